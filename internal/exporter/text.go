package exporter

import (
	"fmt"
	"io"

	"surveystats/pkg/contracts/domain"
)

// DefaultTitle is the first line of the text report when none is configured.
const DefaultTitle = "ECS Student Survey"

const (
	sectionMarker = "#####"

	relativePercentsBanner = "FOR EACH QUESTION/ASSERTION BELOW, RELATIVE PERCENTUAL FREQUENCIES ARE COMPUTED FOR EACH LEVEL OF AGREEMENT"
	averagesBanner         = "FOR EACH QUESTION/ASSERTION BELOW, THE AVERAGE RESPONSE IS SHOWN (FROM 1-DISAGREEMENT TO %d-AGREEMENT)"
	demographicsBanner     = "FOR EACH DEMOGRAPHIC CATEGORY BELOW, RELATIVE PERCENTUAL FREQUENCIES ARE COMPUTED FOR EACH ATTRIBUTE VALUE"

	noRespondentsLine = "NO RESPONDENTS TO SUMMARIZE"
)

// TextRenderer writes the plain-text statistics report.
type TextRenderer struct {
	title string
}

// NewTextRenderer creates a renderer; an empty title means DefaultTitle.
func NewTextRenderer(title string) *TextRenderer {
	if title == "" {
		title = DefaultTitle
	}
	return &TextRenderer{title: title}
}

// Render writes the intro and every section selected by stats.Flags, in
// flag order, each preceded by one blank line.
func (r *TextRenderer) Render(w io.Writer, stats *domain.SurveyStatistics) error {
	p := &printer{w: w}

	p.printf("%s\n", r.title)
	p.printf("SURVEY RESPONSE STATISTICS\n\n")
	p.printf("NUMBER OF RESPONDENTS: %d\n", stats.NumRespondents)

	if stats.Flags.RelativePercents {
		p.printf("\n")
		r.relativePercents(p, stats)
	}
	if stats.Flags.Averages {
		p.printf("\n")
		r.averages(p, stats)
	}
	if stats.Flags.Demographics {
		p.printf("\n")
		r.demographics(p, stats)
	}

	return p.err
}

func (r *TextRenderer) relativePercents(p *printer, stats *domain.SurveyStatistics) {
	if !r.banner(p, relativePercentsBanner, stats) {
		return
	}
	for i, dist := range stats.RelativePercents {
		if i > 0 {
			p.printf("\n")
		}
		p.printf("%d. %s\n", dist.Question.Number(), dist.Question.Label)
		for _, f := range dist.Frequencies {
			p.printf("%s: %s\n", formatFloat(f.Percent), f.Label)
		}
	}
}

func (r *TextRenderer) averages(p *printer, stats *domain.SurveyStatistics) {
	if !r.banner(p, fmt.Sprintf(averagesBanner, stats.ScaleSize), stats) {
		return
	}
	for _, avg := range stats.Averages {
		p.printf("%d. %s - %s\n", avg.Question.Number(), avg.Question.Label, formatFloat(avg.Average))
	}
}

func (r *TextRenderer) demographics(p *printer, stats *domain.SurveyStatistics) {
	if !r.banner(p, demographicsBanner, stats) {
		return
	}
	for i, demo := range stats.Demographics {
		if i > 0 {
			p.printf("\n")
		}
		p.printf("%s\n", demo.Category)
		for _, f := range demo.Frequencies {
			p.printf("%s: %s\n", formatFloat(f.Percent), f.Label)
		}
	}
}

// banner prints the section heading and reports whether the section has a
// body. Without respondents the body is a single placeholder line.
func (r *TextRenderer) banner(p *printer, text string, stats *domain.SurveyStatistics) bool {
	p.printf("%s\n%s\n\n", sectionMarker, text)
	if !stats.HasRespondents() {
		p.printf("%s\n", noRespondentsLine)
		return false
	}
	return true
}

// printer keeps the first write error so rendering code can stay linear.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
