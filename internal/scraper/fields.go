package scraper

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jobsift/jobsift/internal/models"
)

// keyIDPattern pulls the listing identifier out of the save-job anchor's
// rendered html.
var keyIDPattern = regexp.MustCompile(`id="sj_([a-zA-Z0-9]*)"`)

// fieldHandler binds a JobField to the code that populates it. Get
// handlers are pure reads of a listing fragment; set handlers mutate the
// record and may touch the network. requires names the field that must be
// populated first. priority set handlers run before the rest, delayed ones
// go through the engine's rate limiter.
type fieldHandler struct {
	field    models.JobField
	requires models.JobField
	priority bool
	delayed  bool
	get      func(e *Engine, s *goquery.Selection, job *models.Job) error
	set      func(ctx context.Context, e *Engine, job *models.Job) error
}

var fieldHandlers = map[models.JobField]fieldHandler{
	models.FieldTitle:      {field: models.FieldTitle, get: getTitle},
	models.FieldCompany:    {field: models.FieldCompany, get: getCompany},
	models.FieldLocation:   {field: models.FieldLocation, get: getLocation},
	models.FieldTags:       {field: models.FieldTags, get: getTags},
	models.FieldRemoteness: {field: models.FieldRemoteness, get: getRemoteness},
	models.FieldWage:       {field: models.FieldWage, get: getWage},
	models.FieldPostDate:   {field: models.FieldPostDate, get: getPostDate},
	models.FieldKeyID:      {field: models.FieldKeyID, get: getKeyID},

	models.FieldURL:         {field: models.FieldURL, requires: models.FieldKeyID, priority: true, set: setURL},
	models.FieldRaw:         {field: models.FieldRaw, requires: models.FieldURL, delayed: true, set: setRaw},
	models.FieldDescription: {field: models.FieldDescription, requires: models.FieldRaw, set: setDescription},
}

// planFields splits the requested fields into get and set handlers and
// orders the set handlers so every dependency runs before its dependents,
// high-priority handlers as early as their dependency allows. A set field
// whose dependency was not requested fails here instead of mid-scrape.
func planFields(fields []models.JobField) ([]fieldHandler, []fieldHandler, error) {
	resolved := map[models.JobField]bool{}
	requested := map[models.JobField]bool{}
	var gets, sets []fieldHandler

	for _, field := range fields {
		handler, ok := fieldHandlers[field]
		if !ok {
			return nil, nil, fmt.Errorf("%w: field %q", ErrUnsupported, field)
		}
		if requested[field] {
			continue
		}
		requested[field] = true
		if handler.get != nil {
			gets = append(gets, handler)
			resolved[field] = true
		} else {
			sets = append(sets, handler)
		}
	}

	for _, handler := range sets {
		if handler.requires != "" && !requested[handler.requires] {
			return nil, nil, fmt.Errorf(
				"%w: %s requires %s", ErrMissingDependency, handler.field, handler.requires,
			)
		}
	}

	return gets, orderSetHandlers(sets, resolved), nil
}

func orderSetHandlers(sets []fieldHandler, resolved map[models.JobField]bool) []fieldHandler {
	ordered := make([]fieldHandler, 0, len(sets))
	pending := append([]fieldHandler{}, sets...)

	for len(pending) > 0 {
		progressed := false
		for pass := 0; pass < 2; pass++ {
			for i := 0; i < len(pending); i++ {
				handler := pending[i]
				if pass == 0 && !handler.priority {
					continue
				}
				if handler.requires != "" && !resolved[handler.requires] {
					continue
				}
				ordered = append(ordered, handler)
				resolved[handler.field] = true
				pending = append(pending[:i], pending[i+1:]...)
				i--
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}

	// anything left has an unsatisfiable dependency; its setter reports it
	return append(ordered, pending...)
}

// populateOne builds a record from a single listing fragment. A failed
// key id drops the listing; any other field failure marks the record
// incomplete and is logged.
func (e *Engine) populateOne(ctx context.Context, s *goquery.Selection) (models.Job, error) {
	job := models.Job{Locale: e.profile.ID}
	incomplete := false

	for _, handler := range e.getFields {
		if err := handler.get(e, s, &job); err != nil {
			if handler.field == models.FieldKeyID {
				return models.Job{}, err
			}
			e.log.Warn().Str("field", string(handler.field)).Err(err).Msg("listing field failed")
			incomplete = true
		}
	}

	for _, handler := range e.setFields {
		if handler.delayed && e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				incomplete = true
				break
			}
		}
		if err := handler.set(ctx, e, &job); err != nil {
			e.log.Warn().
				Str("field", string(handler.field)).
				Str("key_id", job.KeyID).
				Err(err).
				Msg("listing field failed")
			incomplete = true
		}
	}

	job.Incomplete = incomplete
	return job, nil
}

func getTitle(_ *Engine, s *goquery.Selection, job *models.Job) error {
	sel := s.Find("a[data-tn-element='jobTitle']")
	if sel.Length() == 0 {
		return fmt.Errorf("%w: title", ErrFieldNotFound)
	}
	job.Title = cleanText(sel.First().Text())
	return nil
}

func getCompany(_ *Engine, s *goquery.Selection, job *models.Job) error {
	sel := s.Find("span.company")
	if sel.Length() == 0 {
		return fmt.Errorf("%w: company", ErrFieldNotFound)
	}
	job.Company = cleanText(sel.First().Text())
	return nil
}

func getLocation(_ *Engine, s *goquery.Selection, job *models.Job) error {
	sel := s.Find("span.location")
	if sel.Length() == 0 {
		return fmt.Errorf("%w: location", ErrFieldNotFound)
	}
	job.Location = cleanText(sel.First().Text())
	return nil
}

// getTags reads the card shelf when present; most listings carry none.
func getTags(_ *Engine, s *goquery.Selection, job *models.Job) error {
	s.Find("table.jobCardShelfContainer td.jobCardShelfItem").Each(func(_ int, td *goquery.Selection) {
		if tag := cleanText(td.Text()); tag != "" {
			job.Tags = append(job.Tags, tag)
		}
	})
	return nil
}

func getRemoteness(_ *Engine, s *goquery.Selection, job *models.Job) error {
	job.Remoteness = classifyRemoteness(s.Find("span.remote").First().Text())
	return nil
}

func getWage(_ *Engine, s *goquery.Selection, job *models.Job) error {
	job.Wage = cleanText(s.Find("span.salaryText").First().Text())
	return nil
}

func getPostDate(e *Engine, s *goquery.Selection, job *models.Job) error {
	sel := s.Find("span.date")
	if sel.Length() == 0 {
		return fmt.Errorf("%w: post date", ErrFieldNotFound)
	}
	job.PostedAtRaw = cleanText(sel.First().Text())

	posted, err := parsePostDate(job.PostedAtRaw, e.now())
	if err != nil {
		return err
	}
	job.PostedAt = posted
	return nil
}

func getKeyID(_ *Engine, s *goquery.Selection, job *models.Job) error {
	anchor := s.Find("a.sl.resultLink.save-job-link")
	if anchor.Length() == 0 {
		return fmt.Errorf("%w: key id anchor", ErrFieldNotFound)
	}
	rendered, err := goquery.OuterHtml(anchor.First())
	if err != nil {
		return fmt.Errorf("%w: key id anchor", ErrFieldNotFound)
	}
	match := keyIDPattern.FindStringSubmatch(rendered)
	if match == nil {
		return fmt.Errorf("%w: key id", ErrFieldNotFound)
	}
	job.KeyID = match[1]
	return nil
}

func setURL(_ context.Context, e *Engine, job *models.Job) error {
	if job.KeyID == "" {
		return fmt.Errorf("%w: url needs key_id", ErrMissingDependency)
	}
	job.URL = e.profile.DetailURL(job.KeyID)
	return nil
}

func setRaw(ctx context.Context, e *Engine, job *models.Job) error {
	if job.URL == "" {
		return fmt.Errorf("%w: raw needs url", ErrMissingDependency)
	}
	doc, err := e.fetchDocument(ctx, job.URL)
	if err != nil {
		return err
	}
	job.Raw = doc
	return nil
}

func setDescription(_ context.Context, _ *Engine, job *models.Job) error {
	if job.Raw == nil {
		return fmt.Errorf("%w: description needs raw", ErrMissingDependency)
	}
	sel := job.Raw.Find("#jobDescriptionText")
	if sel.Length() == 0 {
		return fmt.Errorf("%w: description", ErrFieldNotFound)
	}
	job.Description = strings.TrimSpace(sel.First().Text())
	return nil
}
