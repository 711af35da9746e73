package domain

// OptionSet is an ordered vocabulary of labels. The position of a label is the
// index used for counting and the order used for display.
type OptionSet []string

// Len returns the number of labels in the set.
func (s OptionSet) Len() int {
	return len(s)
}

// Question represents one survey item, identified by its position in the
// questions header line.
type Question struct {
	Index int    `json:"index" validate:"min=0"`
	Label string `json:"label" validate:"required"`
}

// Number returns the 1-based question number used in reports.
func (q Question) Number() int {
	return q.Index + 1
}

// Respondent holds one participant's demographic attributes and answers.
// Answers[i] corresponds to Question i.
type Respondent struct {
	UndergradProgram string   `json:"undergrad_program"`
	ResidenceStatus  string   `json:"residence_status"`
	Answers          []string `json:"answers"`
}

// ReportFlags selects which report sections are rendered.
type ReportFlags struct {
	RelativePercents bool `json:"relative_percents"`
	Averages         bool `json:"averages"`
	Demographics     bool `json:"demographics"`
}

// SurveyData is the aggregate root built by the parser. It is populated once
// and treated as read-only by aggregation and rendering.
type SurveyData struct {
	Flags            ReportFlags  `json:"flags"`
	UndergradOptions OptionSet    `json:"undergrad_options" validate:"min=1,dive,required"`
	ResidenceOptions OptionSet    `json:"residence_options" validate:"min=1,dive,required"`
	Questions        []Question   `json:"questions" validate:"min=1,dive"`
	AnswerOptions    OptionSet    `json:"answer_options" validate:"min=1,dive,required"`
	DeclaredCount    int          `json:"declared_count" validate:"min=0"`
	Respondents      []Respondent `json:"respondents"`
	Filled           int          `json:"filled" validate:"min=0"`
}

// NewSurveyData returns an empty survey.
func NewSurveyData() *SurveyData {
	return &SurveyData{}
}

// NumQuestions returns the number of questions declared in the header.
func (s *SurveyData) NumQuestions() int {
	return len(s.Questions)
}

// NumRespondents returns the declared respondent count.
func (s *SurveyData) NumRespondents() int {
	return s.DeclaredCount
}

// Complete reports whether every declared respondent row has been read.
func (s *SurveyData) Complete() bool {
	return s.Filled == s.DeclaredCount && len(s.Respondents) == s.Filled
}

// Populated returns the respondents that have been filled so far.
func (s *SurveyData) Populated() []Respondent {
	if s.Filled > len(s.Respondents) {
		return s.Respondents
	}
	return s.Respondents[:s.Filled]
}
