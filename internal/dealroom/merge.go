package dealroom

import (
	"bytes"
	"encoding/csv"
	"os"
	"sort"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/akazakci/deeptech-startup-data/internal/model"
)

// Report summarizes one merge run. Collided keys are keys that map to more
// than one row on either side; rows under them are left unmatched rather than
// merged by guesswork.
type Report struct {
	Companies        int      `json:"companies"`
	MatchedByDomain  int      `json:"matched_by_domain"`
	MatchedByName    int      `json:"matched_by_name"`
	Unmatched        int      `json:"unmatched"`
	DomainCollisions []string `json:"domain_collisions,omitempty"`
	NameCollisions   []string `json:"name_collisions,omitempty"`
}

// index maps a join key to a single Dealroom row, tracking keys claimed by
// more than one row.
type index struct {
	rows     map[string][]string
	collided map[string]bool
}

func buildIndex(t *Table, key func(row []string) string) *index {
	idx := &index{rows: map[string][]string{}, collided: map[string]bool{}}
	for _, row := range t.Rows {
		k := key(row)
		if k == "" {
			continue
		}
		if _, exists := idx.rows[k]; exists {
			idx.collided[k] = true
			continue
		}
		idx.rows[k] = row
	}
	return idx
}

func (idx *index) lookup(k string) ([]string, bool) {
	if k == "" || idx.collided[k] {
		return nil, false
	}
	row, ok := idx.rows[k]
	return row, ok
}

// Merge joins a Dealroom export onto the companies table and writes the
// combined CSV to outPath. Matching prefers website domain and falls back to
// normalized name; EPO-side key collisions (several entities sharing one
// domain) are reported the same way as Dealroom-side ones.
func Merge(companies []model.FlatEntity, dr *Table, outPath string) (*Report, error) {
	byDomain := buildIndex(dr, func(row []string) string { return Domain(dr.Website(row)) })
	byName := buildIndex(dr, func(row []string) string { return NormName(dr.Name(row)) })

	// A key shared by multiple EPO entities makes the join ambiguous in the
	// other direction, so those keys are excluded too, on both join axes.
	epoDomainCount := map[string]int{}
	epoNameCount := map[string]int{}
	for i := range companies {
		if d := companyDomain(&companies[i]); d != "" {
			epoDomainCount[d]++
		}
		if n := NormName(companies[i].Name); n != "" {
			epoNameCount[n]++
		}
	}

	rep := &Report{Companies: len(companies)}
	collidedDomains := map[string]bool{}
	for d, n := range epoDomainCount {
		if n > 1 {
			collidedDomains[d] = true
		}
	}
	for d := range byDomain.collided {
		collidedDomains[d] = true
	}
	collidedNames := map[string]bool{}
	for n, c := range epoNameCount {
		if c > 1 {
			collidedNames[n] = true
		}
	}
	for n := range byName.collided {
		collidedNames[n] = true
	}
	for d := range collidedDomains {
		rep.DomainCollisions = append(rep.DomainCollisions, d)
	}
	for n := range collidedNames {
		rep.NameCollisions = append(rep.NameCollisions, n)
	}
	sort.Strings(rep.DomainCollisions)
	sort.Strings(rep.NameCollisions)

	companyFields, err := encodeCompanies(companies)
	if err != nil {
		return nil, err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return nil, eris.Wrap(err, "dealroom: create output")
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)

	header := append([]string{}, companyFields[0]...)
	for _, h := range dr.Header {
		header = append(header, "dealroom_"+h)
	}
	if err := w.Write(header); err != nil {
		return nil, eris.Wrap(err, "dealroom: write header")
	}

	for i := range companies {
		c := &companies[i]

		var match []string
		if d := companyDomain(c); d != "" && !collidedDomains[d] {
			if row, ok := byDomain.lookup(d); ok {
				match = row
				rep.MatchedByDomain++
			}
		}
		if match == nil {
			if n := NormName(c.Name); n != "" && !collidedNames[n] {
				if row, ok := byName.lookup(n); ok {
					match = row
					rep.MatchedByName++
				}
			}
		}
		if match == nil {
			rep.Unmatched++
		}

		// Pad ragged Dealroom rows to the header width.
		drFields := make([]string, len(dr.Header))
		copy(drFields, match)
		if err := w.Write(append(append([]string{}, companyFields[i+1]...), drFields...)); err != nil {
			return nil, eris.Wrap(err, "dealroom: write row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, eris.Wrap(err, "dealroom: flush output")
	}

	zap.L().Info("dealroom merge complete",
		zap.Int("companies", rep.Companies),
		zap.Int("matched_by_domain", rep.MatchedByDomain),
		zap.Int("matched_by_name", rep.MatchedByName),
		zap.Int("unmatched", rep.Unmatched),
		zap.Int("domain_collisions", len(rep.DomainCollisions)),
		zap.Int("name_collisions", len(rep.NameCollisions)),
	)

	return rep, nil
}

// encodeCompanies renders the companies through the csvutil tags and
// re-parses the result into field slices: row 0 is the header, row i+1 the
// i-th company.
func encodeCompanies(companies []model.FlatEntity) ([][]string, error) {
	raw, err := csvutil.Marshal(companies)
	if err != nil {
		return nil, eris.Wrap(err, "dealroom: encode companies")
	}
	r := csv.NewReader(bytes.NewReader(raw))
	records, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "dealroom: re-parse companies")
	}
	if len(records) != len(companies)+1 {
		return nil, eris.New("dealroom: encoded row count mismatch")
	}
	return records, nil
}

// companyDomain prefers the normalized homepage URL and falls back to the raw
// one.
func companyDomain(c *model.FlatEntity) string {
	if d := Domain(c.HomepageURL); d != "" {
		return d
	}
	return Domain(c.HomepageURLRaw)
}
