package submit

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-dosimetry/pkg/draft"
	"github.com/goliatone/go-dosimetry/pkg/portal"
)

// decomposed runs the dependent calls stage by stage. Stage N+1 starts only
// after every call of stage N succeeded; nothing is rolled back on failure.
func (o *Orchestrator) decomposed(ctx context.Context, d draft.Draft, target Target) (Result, *Failure) {
	var res Result

	switch t := target.(type) {
	case ExistingArticle:
		res.ArticleID = t.ID
	default:
		o.logger.Debug("submission stage", zap.String("stage", string(StageArticle)))
		in := portal.ArticleInput{Title: d.Article.Title, Authors: d.Article.Authors, DOI: d.Article.DOI}
		err := o.retry.do(ctx, "create article", func(ctx context.Context) error {
			article, err := o.backend.CreateArticle(ctx, in)
			res.ArticleID = article.ID
			return err
		})
		if err != nil {
			return Result{}, o.fail("create article", err)
		}
	}

	o.logger.Debug("submission stage", zap.String("stage", string(StageExperience)), zap.Int64("article_id", res.ArticleID))
	expIn := portal.ExperienceInput{Description: d.Experience.Description, ArticleID: res.ArticleID}
	err := o.retry.do(ctx, "create experience", func(ctx context.Context) error {
		exp, err := o.backend.CreateExperience(ctx, expIn)
		res.ExperienceID = exp.ID
		return err
	})
	if err != nil {
		return Result{}, o.fail("create experience", err)
	}

	machines := d.KeptMachines()
	detectors := d.KeptDetectors()
	phantoms := d.KeptPhantoms()

	o.logger.Debug("submission stage", zap.String("stage", "equipment"),
		zap.Int("machines", len(machines)),
		zap.Int("detectors", len(detectors)),
		zap.Int("phantoms", len(phantoms)))
	ids, err := o.createEquipment(ctx, machines, detectors, phantoms)
	if err != nil {
		return Result{}, o.fail("create equipment", err)
	}
	if err := o.linkEquipment(ctx, res.ExperienceID, ids, machines, detectors); err != nil {
		return Result{}, o.fail("link equipment", err)
	}
	res.Machines = len(machines)
	res.Detectors = len(detectors)
	res.Phantoms = len(phantoms)

	o.logger.Debug("submission stage", zap.String("stage", string(StageData)), zap.Int64("experience_id", res.ExperienceID))
	upload := portal.DatasetUpload{
		File:        d.Dataset.File,
		DataType:    dataType(d.Dataset),
		Unit:        d.Dataset.Unit,
		Description: d.Dataset.Description,
		Columns:     d.Dataset.Columns,
	}
	err = o.retry.do(ctx, "upload dataset", func(ctx context.Context) error {
		rec, err := o.backend.UploadDataset(ctx, res.ExperienceID, upload)
		res.DataID = rec.ID
		return err
	})
	if err != nil {
		return Result{}, o.fail("upload dataset", err)
	}
	return res, nil
}

type equipmentIDs struct {
	machines  []int64
	detectors []int64
	phantoms  []int64
}

// createEquipment creates every row concurrently. The first failure cancels
// the calls still in flight.
func (o *Orchestrator) createEquipment(ctx context.Context, machines []draft.Machine, detectors []draft.Detector, phantoms []draft.Phantom) (equipmentIDs, error) {
	ids := equipmentIDs{
		machines:  make([]int64, len(machines)),
		detectors: make([]int64, len(detectors)),
		phantoms:  make([]int64, len(phantoms)),
	}
	g, gctx := errgroup.WithContext(ctx)

	for i, m := range machines {
		in := portal.MachineInput{Manufacturer: m.Manufacturer, Model: m.Model, MachineType: m.MachineType}
		g.Go(func() error {
			return o.retry.do(gctx, "create machine", func(ctx context.Context) error {
				rec, err := o.backend.CreateMachine(ctx, in)
				ids.machines[i] = rec.ID
				return err
			})
		})
	}
	for i, det := range detectors {
		in := portal.DetectorInput{DetectorType: det.DetectorType, Model: det.Model, Manufacturer: det.Manufacturer}
		g.Go(func() error {
			return o.retry.do(gctx, "create detector", func(ctx context.Context) error {
				rec, err := o.backend.CreateDetector(ctx, in)
				ids.detectors[i] = rec.ID
				return err
			})
		})
	}
	for i, p := range phantoms {
		in := portal.PhantomInput{Name: p.Name, PhantomType: p.PhantomType, Dimensions: p.Dimensions, Material: p.Material}
		g.Go(func() error {
			return o.retry.do(gctx, "create phantom", func(ctx context.Context) error {
				rec, err := o.backend.CreatePhantom(ctx, in)
				ids.phantoms[i] = rec.ID
				return err
			})
		})
	}

	return ids, g.Wait()
}

// linkEquipment attaches the created rows to the experience concurrently.
// Per-experience parameters travel on the link records.
func (o *Orchestrator) linkEquipment(ctx context.Context, experienceID int64, ids equipmentIDs, machines []draft.Machine, detectors []draft.Detector) error {
	g, gctx := errgroup.WithContext(ctx)

	for i, id := range ids.machines {
		in := portal.MachineLink{MachineID: id, Energy: machines[i].Energy, Collimation: machines[i].Collimation, Settings: machines[i].Settings}
		g.Go(func() error {
			return o.retry.do(gctx, "link machine", func(ctx context.Context) error {
				_, err := o.backend.LinkMachine(ctx, experienceID, in)
				return err
			})
		})
	}
	for i, id := range ids.detectors {
		in := portal.DetectorLink{DetectorID: id, Position: detectors[i].Position, Depth: detectors[i].Depth, Orientation: detectors[i].Orientation}
		g.Go(func() error {
			return o.retry.do(gctx, "link detector", func(ctx context.Context) error {
				_, err := o.backend.LinkDetector(ctx, experienceID, in)
				return err
			})
		})
	}
	for _, id := range ids.phantoms {
		in := portal.PhantomLink{PhantomID: id}
		g.Go(func() error {
			return o.retry.do(gctx, "link phantom", func(ctx context.Context) error {
				_, err := o.backend.LinkPhantom(ctx, experienceID, in)
				return err
			})
		})
	}

	return g.Wait()
}
