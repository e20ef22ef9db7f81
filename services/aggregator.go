package services

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"rate-comparison/models"
	"rate-comparison/utils"
)

// Aggregator turns rate observations and wizard inputs into a grouped
// rate comparison report. Generate is pure: it reads only its input.
type Aggregator struct {
	logger *utils.Logger
}

func NewAggregator(logger *utils.Logger) *Aggregator {
	return &Aggregator{logger: logger.With("aggregator")}
}

type groupKey struct {
	size string
	code string
}

type storeBucket struct {
	id  string
	obs []models.RateObservation
}

type groupAcc struct {
	key    groupKey
	obs    []models.RateObservation
	stores []*storeBucket
	byID   map[string]*storeBucket
}

func (g *groupAcc) add(o models.RateObservation) {
	g.obs = append(g.obs, o)
	b, ok := g.byID[o.StoreID]
	if !ok {
		b = &storeBucket{id: o.StoreID}
		g.byID[o.StoreID] = b
		g.stores = append(g.stores, b)
	}
	b.obs = append(b.obs, o)
}

func (a *Aggregator) Generate(in models.ReportInput) *models.GroupedReport {
	report := &models.GroupedReport{
		GeneratedAt:       in.Now,
		SubjectStoreID:    in.SubjectStoreID,
		TotalObservations: len(in.Observations),
		Groups:            []models.ReportGroup{},
	}

	if len(in.Observations) == 0 {
		return report
	}

	sizes := NewSizeSet(in.SelectedSizes)
	starts := WindowStarts(in.Now)

	groups := make(map[groupKey]*groupAcc)
	var order []*groupAcc
	excluded := 0

	for _, o := range in.Observations {
		if !sizes.Contains(o.Size) {
			excluded++
			continue
		}
		key := groupKey{size: o.Size, code: FeatureCodeFor(o, in.FeatureCodes)}
		g, ok := groups[key]
		if !ok {
			g = &groupAcc{key: key, byID: make(map[string]*storeBucket)}
			groups[key] = g
			order = append(order, g)
		}
		g.add(o)
	}

	stores := make(map[string]models.Store, len(in.Stores))
	for _, s := range in.Stores {
		stores[s.ID] = s
	}

	for _, g := range order {
		report.Groups = append(report.Groups, a.buildGroup(g, in, stores, starts))
	}

	sort.SliceStable(report.Groups, func(i, j int) bool {
		gi, gj := report.Groups[i], report.Groups[j]
		if gi.Area != gj.Area {
			return gi.Area < gj.Area
		}
		if gi.FeatureCode != gj.FeatureCode {
			return gi.FeatureCode < gj.FeatureCode
		}
		return gi.Size < gj.Size
	})

	a.logger.Debug("%d observations -> %d groups (%d outside selected sizes)",
		len(in.Observations), len(report.Groups), excluded)
	return report
}

func (a *Aggregator) buildGroup(g *groupAcc, in models.ReportInput, stores map[string]models.Store, starts [models.WindowCount]time.Time) models.ReportGroup {
	group := models.ReportGroup{
		Size:        g.key.size,
		FeatureCode: g.key.code,
		Area:        SizeArea(g.key.size),
		Rows:        make([]models.StoreRow, 0, len(g.stores)),
		MarketShare: float64(len(g.obs)) / float64(len(in.Observations)) * 100,
	}

	for _, b := range g.stores {
		row := models.StoreRow{
			StoreID:      b.id,
			Name:         displayName(b.id, in.CustomNames, stores),
			IsSubject:    isSubject(b.id, in.SubjectStoreID),
			Adjustment:   StoreAdjustment(b.id, in.SubjectStoreID, in.Adjustments, in.Rankings),
			Observations: len(b.obs),
		}
		if s, ok := stores[b.id]; ok {
			d := s.Distance
			row.Distance = &d
		}
		if md, ok := in.Metadata[b.id]; ok {
			row.YearBuilt = md.YearBuilt
			row.SquareFootage = md.SquareFootage
		}
		for i, start := range starts {
			asking, inStore := windowMeans(b.obs, start)
			row.Windows[i] = models.WindowFigures{
				AdjustedAsking: Adjusted(asking, row.Adjustment),
				Asking:         asking,
				InStore:        inStore,
			}
		}
		group.Rows = append(group.Rows, row)
	}

	group.Average.Observations = len(g.obs)
	for i, start := range starts {
		asking, inStore := windowMeans(g.obs, start)
		group.Average.Windows[i] = models.WindowFigures{Asking: asking, InStore: inStore}
	}

	sortRows(group.Rows)
	return group
}

// sortRows puts the subject first, then orders by distance. Stores with no
// known distance go last; ties break on store id.
func sortRows(rows []models.StoreRow) {
	dist := func(r models.StoreRow) float64 {
		if r.Distance == nil {
			return math.Inf(1)
		}
		return *r.Distance
	}
	sort.SliceStable(rows, func(i, j int) bool {
		ri, rj := rows[i], rows[j]
		if ri.IsSubject != rj.IsSubject {
			return ri.IsSubject
		}
		di, dj := dist(ri), dist(rj)
		if di != dj {
			return di < dj
		}
		return ri.StoreID < rj.StoreID
	})
}

func displayName(id string, custom map[string]string, stores map[string]models.Store) string {
	if name := strings.TrimSpace(custom[id]); name != "" {
		return name
	}
	if s, ok := stores[id]; ok && s.Name != "" {
		return s.Name
	}
	return id
}

// Print writes a terminal summary of the report: one block per group with
// the T-12 and T-1 asking figures of every row.
func (a *Aggregator) Print(r *models.GroupedReport) {
	sep := strings.Repeat("═", 78)
	thin := strings.Repeat("─", 78)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 RATE COMPARISON ANALYSIS\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Observations  : \033[1m%d\033[0m\n", r.TotalObservations)
	fmt.Printf("  Groups        : \033[1m%d\033[0m\n", len(r.Groups))
	fmt.Printf("  As of         : %s\n", r.GeneratedAt.Format("2006-01-02"))
	fmt.Println()

	if len(r.Groups) == 0 {
		fmt.Printf("  No observations matched the selected unit sizes\n")
	}

	for _, g := range r.Groups {
		fmt.Printf("\033[1;33m  %s %s\033[0m  (%s of market)\n", g.Size, g.FeatureCode, FormatPercent(g.MarketShare))
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  %-32s %7s %10s %10s %10s %10s\n", "Store", "Miles", "T-12 adj", "T-12", "T-1 adj", "T-1")
		for _, row := range g.Rows {
			name := truncate(row.Name, 30)
			if row.IsSubject {
				name = "* " + truncate(row.Name, 28)
			}
			fmt.Printf("  %-32s %7s %10s %10s %10s %10s\n",
				name, FormatDistance(row.Distance),
				FormatCurrency(row.Windows[0].AdjustedAsking), FormatCurrency(row.Windows[0].Asking),
				FormatCurrency(row.Windows[3].AdjustedAsking), FormatCurrency(row.Windows[3].Asking))
		}
		fmt.Printf("  \033[1m%-32s\033[0m %7s %10s %10s %10s %10s\n",
			"Group average", "", NotAvailable, FormatCurrency(g.Average.Windows[0].Asking),
			NotAvailable, FormatCurrency(g.Average.Windows[3].Asking))
		fmt.Println()
	}

	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)
}

func truncate(s string, max int) string {
	if len([]rune(s)) <= max {
		return s
	}
	return string([]rune(s)[:max-3]) + "..."
}
