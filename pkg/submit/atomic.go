package submit

import (
	"context"

	"go.uber.org/zap"

	"github.com/goliatone/go-dosimetry/pkg/draft"
	"github.com/goliatone/go-dosimetry/pkg/portal"
)

func experienceSubmission(d draft.Draft) portal.ExperienceSubmission {
	return portal.ExperienceSubmission{
		Description:     d.Experience.Description,
		Machines:        d.KeptMachines(),
		Detectors:       d.KeptDetectors(),
		Phantoms:        d.KeptPhantoms(),
		File:            d.Dataset.File,
		DataType:        dataType(d.Dataset),
		Unit:            d.Dataset.Unit,
		DataDescription: d.Dataset.Description,
		Columns:         d.Dataset.Columns,
	}
}

// atomic issues a single request; the backend creates everything or nothing.
func (o *Orchestrator) atomic(ctx context.Context, d draft.Draft, target Target) (Result, *Failure) {
	sub := experienceSubmission(d)

	var (
		out       portal.CompleteResult
		operation string
		call      func(context.Context) error
	)
	switch t := target.(type) {
	case ExistingArticle:
		operation = "submit experience"
		call = func(ctx context.Context) (err error) {
			out, err = o.backend.SubmitExperience(ctx, t.ID, sub)
			return err
		}
	default:
		operation = "submit complete"
		in := portal.CompleteSubmission{Article: d.Article, ExperienceSubmission: sub}
		call = func(ctx context.Context) (err error) {
			out, err = o.backend.SubmitComplete(ctx, in)
			return err
		}
	}

	o.logger.Debug("submitting draft", zap.String("operation", operation),
		zap.Int("machines", len(sub.Machines)),
		zap.Int("detectors", len(sub.Detectors)),
		zap.Int("phantoms", len(sub.Phantoms)))
	if err := o.retry.do(ctx, operation, call); err != nil {
		return Result{}, o.fail(operation, err)
	}

	return Result{
		ArticleID:    out.ArticleID,
		ExperienceID: out.ExperienceID,
		DataID:       out.DataID,
		Machines:     out.MachinesCount,
		Detectors:    out.DetectorsCount,
		Phantoms:     out.PhantomsCount,
	}, nil
}
