// Package validate audits a unified journal dataset for identifier
// conflicts that survived merging, most importantly the same ISSN
// being claimed by more than one unified record.
package validate

import (
	"sort"

	"github.com/sibils/journals/pkg/authority"
	"github.com/sibils/journals/pkg/journals"
	"github.com/sibils/journals/pkg/logging"
	"github.com/sibils/journals/pkg/sources"
)

// Claimant is one unified record holding a contested ISSN.
type Claimant struct {
	UnifiedID string
	Title     string
	NLMID     string
	Priority  int
	Sources   []sources.ID
}

// ConflictRecord reports one ISSN claimed by multiple unified
// records. The winner keeps the ISSN in its authoritative slots; each
// loser keeps it only in its all-ISSNs list.
type ConflictRecord struct {
	ISSN   string
	Winner Claimant
	Losers []Claimant
}

// SharedISSNs scans the unified dataset for ISSNs appearing in more
// than one record's all-ISSNs list. For every contested ISSN the
// highest-priority claimant wins and the ISSN is stripped from each
// loser's authoritative slots (ISSN-L, print, electronic) in place.
// The all-ISSNs list is never touched: the losing claim stays
// documented. Conflicts are returned sorted by ISSN.
func SharedISSNs(js []*journals.Journal, table *authority.Table) []ConflictRecord {
	if table == nil {
		table = authority.New()
	}

	claims := make(map[string][]*journals.Journal)
	for _, j := range js {
		for _, issn := range j.AllISSNs {
			claims[issn] = append(claims[issn], j)
		}
	}

	contested := make([]string, 0)
	for issn, claimants := range claims {
		if len(claimants) > 1 {
			contested = append(contested, issn)
		}
	}
	sort.Strings(contested)

	var conflicts []ConflictRecord
	for _, issn := range contested {
		claimants := claims[issn]
		sort.SliceStable(claimants, func(i, j int) bool {
			a, b := claimantAuthority(table, claimants[i]), claimantAuthority(table, claimants[j])
			if a != b {
				return a > b
			}
			ra, rb := bestRank(claimants[i]), bestRank(claimants[j])
			if ra != rb {
				return ra < rb
			}
			return claimants[i].UnifiedID < claimants[j].UnifiedID
		})

		conflict := ConflictRecord{ISSN: issn, Winner: asClaimant(table, claimants[0])}
		for _, loser := range claimants[1:] {
			stripISSN(loser, issn)
			conflict.Losers = append(conflict.Losers, asClaimant(table, loser))
			logging.Warn().
				Str("issn", issn).
				Str("winner", conflict.Winner.UnifiedID).
				Str("loser", loser.UnifiedID).
				Msg("ISSN claimed by multiple unified records, stripped from lower-priority claimant")
		}
		conflicts = append(conflicts, conflict)
	}
	return conflicts
}

// claimantAuthority is the strongest ISSN-field priority among the
// record's contributing sources.
func claimantAuthority(table *authority.Table, j *journals.Journal) int {
	best := -1
	for _, src := range j.Sources {
		if p := table.Priority("ISSNL", src); p > best {
			best = p
		}
	}
	return best
}

func bestRank(j *journals.Journal) int {
	best := len(sources.IDs())
	for _, src := range j.Sources {
		if r := sources.Rank(src); r < best {
			best = r
		}
	}
	return best
}

func asClaimant(table *authority.Table, j *journals.Journal) Claimant {
	return Claimant{
		UnifiedID: j.UnifiedID,
		Title:     j.Title,
		NLMID:     j.NLMID,
		Priority:  claimantAuthority(table, j),
		Sources:   j.Sources,
	}
}

// stripISSN removes a contested ISSN from the authoritative slots of
// a losing claimant. When the stripped ISSN was the unified ID's
// ISSN-L, the unified ID itself is left alone: it is already public
// and stable.
func stripISSN(j *journals.Journal, issn string) {
	if j.ISSNL == issn {
		j.ISSNL = ""
	}
	if j.ISSNPrint == issn {
		j.ISSNPrint = ""
	}
	if j.ISSNElectronic == issn {
		j.ISSNElectronic = ""
	}
}
