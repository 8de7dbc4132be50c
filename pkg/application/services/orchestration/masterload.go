package orchestration

import (
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kaizen-line/inspector-dispatch/pkg/domain/entities"
	"github.com/kaizen-line/inspector-dispatch/pkg/infrastructure/mastercache"
)

// loadMasterData loads the four independent master snapshots spec.md
// §5 names (inspectors, skill matrix, vacations, fixed pins). When a
// MasterCache is wired (spec.md §4.6) each kind is fetched through it,
// so an unchanged master input short-circuits to the in-memory or disk
// tier instead of re-reading the source; otherwise the reads proceed in
// parallel via errgroup, falling back to a plain sequential load if the
// parallel attempt fails for any one of them. Every returned snapshot
// is the reader's fully built, immutable value; no partial results are
// ever handed to the engine.
func (o *Orchestrator) loadMasterData(today time.Time) (
	products map[string]entities.Product,
	inspectors []entities.Inspector,
	skills *entities.SkillMatrix,
	vacations map[string]string,
	fixedPins []entities.FixedPin,
	err error,
) {
	if o.MasterCache != nil && o.MasterCachePath != "" {
		inspectors, skills, vacations, fixedPins, err = o.loadMasterDataCached(today)
		if err != nil {
			return nil, nil, nil, nil, nil, err
		}
		return map[string]entities.Product{}, inspectors, skills, vacations, fixedPins, nil
	}

	inspectors, skills, vacations, fixedPins, err = o.loadMasterDataParallel(today)
	if err != nil {
		o.Logger.Warn().Err(err).Msg("parallel master load failed, falling back to sequential")
		inspectors, skills, vacations, fixedPins, err = o.loadMasterDataSequential(today)
		if err != nil {
			return nil, nil, nil, nil, nil, err
		}
	}
	// Products are loaded lazily per lot by ProductsForLots once the lot
	// set is known (after dedup), since ProductMasterSource only offers
	// a per-product lookup rather than a roster call.
	return map[string]entities.Product{}, inspectors, skills, vacations, fixedPins, nil
}

// loadMasterDataCached fetches each master kind through o.MasterCache,
// one bucket per kind (spec.md §4.6), still in parallel via errgroup so
// a cold cache costs no more than the uncached path. Vacations fold
// today's date into the cache kind since the master file's fingerprint
// alone cannot distinguish one run date's absences from another's.
func (o *Orchestrator) loadMasterDataCached(today time.Time) (
	[]entities.Inspector, *entities.SkillMatrix, map[string]string, []entities.FixedPin, error,
) {
	var (
		inspectors []entities.Inspector
		skillCells []entities.SkillCell
		vacations  map[string]string
		fixedPins  []entities.FixedPin
	)

	var g errgroup.Group
	g.Go(func() error {
		v, err := o.MasterCache.Fetch("inspectors", o.MasterCachePath,
			func() (any, error) { return o.Collaborators.Inspectors.Inspectors() },
			mastercache.EncodeGobAny[[]entities.Inspector],
			mastercache.DecodeGobAny[[]entities.Inspector],
		)
		if err != nil {
			return fmt.Errorf("loading inspectors: %w", err)
		}
		inspectors = v.([]entities.Inspector)
		return nil
	})
	g.Go(func() error {
		v, err := o.MasterCache.Fetch("skill_cells", o.MasterCachePath,
			func() (any, error) { return o.Collaborators.Skills.SkillCells() },
			mastercache.EncodeGobAny[[]entities.SkillCell],
			mastercache.DecodeGobAny[[]entities.SkillCell],
		)
		if err != nil {
			return fmt.Errorf("loading skill matrix: %w", err)
		}
		skillCells = v.([]entities.SkillCell)
		return nil
	})
	g.Go(func() error {
		kind := "vacations:" + today.Format("2006-01-02")
		v, err := o.MasterCache.Fetch(kind, o.MasterCachePath,
			func() (any, error) { return o.Collaborators.Vacations.AbsentInspectorIDs(today) },
			mastercache.EncodeGobAny[map[string]string],
			mastercache.DecodeGobAny[map[string]string],
		)
		if err != nil {
			return fmt.Errorf("loading vacations: %w", err)
		}
		vacations = v.(map[string]string)
		return nil
	})
	g.Go(func() error {
		v, err := o.MasterCache.Fetch("fixed_pins", o.MasterCachePath,
			func() (any, error) { return o.Collaborators.FixedPins.FixedPins() },
			mastercache.EncodeGobAny[[]entities.FixedPin],
			mastercache.DecodeGobAny[[]entities.FixedPin],
		)
		if err != nil {
			return fmt.Errorf("loading fixed pins: %w", err)
		}
		fixedPins = v.([]entities.FixedPin)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, nil, nil, err
	}
	return inspectors, entities.NewSkillMatrix(skillCells), vacations, fixedPins, nil
}

func (o *Orchestrator) loadMasterDataParallel(today time.Time) (
	[]entities.Inspector, *entities.SkillMatrix, map[string]string, []entities.FixedPin, error,
) {
	var (
		inspectors []entities.Inspector
		skillCells []entities.SkillCell
		vacations  map[string]string
		fixedPins  []entities.FixedPin
	)

	var g errgroup.Group
	g.Go(func() error {
		var err error
		inspectors, err = o.Collaborators.Inspectors.Inspectors()
		return err
	})
	g.Go(func() error {
		var err error
		skillCells, err = o.Collaborators.Skills.SkillCells()
		return err
	})
	g.Go(func() error {
		var err error
		vacations, err = o.Collaborators.Vacations.AbsentInspectorIDs(today)
		return err
	})
	g.Go(func() error {
		var err error
		fixedPins, err = o.Collaborators.FixedPins.FixedPins()
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, nil, nil, err
	}
	return inspectors, entities.NewSkillMatrix(skillCells), vacations, fixedPins, nil
}

func (o *Orchestrator) loadMasterDataSequential(today time.Time) (
	[]entities.Inspector, *entities.SkillMatrix, map[string]string, []entities.FixedPin, error,
) {
	inspectors, err := o.Collaborators.Inspectors.Inspectors()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("loading inspectors: %w", err)
	}
	skillCells, err := o.Collaborators.Skills.SkillCells()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("loading skill matrix: %w", err)
	}
	vacations, err := o.Collaborators.Vacations.AbsentInspectorIDs(today)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("loading vacations: %w", err)
	}
	fixedPins, err := o.Collaborators.FixedPins.FixedPins()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("loading fixed pins: %w", err)
	}
	return inspectors, entities.NewSkillMatrix(skillCells), vacations, fixedPins, nil
}

// productsForLots resolves a Product (with its full process-time table)
// for every distinct product_number appearing in lots.
func (o *Orchestrator) productsForLots(lots []entities.Lot) (map[string]entities.Product, error) {
	out := make(map[string]entities.Product)
	for _, lot := range lots {
		if _, ok := out[lot.ProductNumber]; ok {
			continue
		}
		times, err := o.Collaborators.Products.ProductProcessTimes(lot.ProductNumber)
		if err != nil {
			return nil, fmt.Errorf("loading process times for product %s: %w", lot.ProductNumber, err)
		}
		out[lot.ProductNumber] = entities.Product{ProductNumber: lot.ProductNumber, ProcessTimes: times}
	}
	return out, nil
}
