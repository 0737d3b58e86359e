package classifier

import (
	"strings"

	"github.com/scolli03/rwmarket/internal/types"
)

// Rule decides ranked war membership for one case. Rules are evaluated in
// order and the first match wins.
type Rule struct {
	Name  string
	Match func(item types.RawItem) bool
}

// Rule names, reported on ClassifiedItem.MatchedRule
const (
	RuleAllowList = "allow_list"
	RuleName      = "name_pattern"
	RuleTyped     = "typed_with_modifiers"
)

var (
	// namePatterns are matched against the folded item name
	namePatterns = []string{"ranked war", "rw ", "rankedwar"}

	weaponTypes = []string{"primary", "secondary", "melee"}
	armorType   = "defensive"

	// broadTypeFragments catch type texts outside the enumerated set
	broadTypeFragments = []string{
		"melee", "ranged", "temporary",
		"armor", "helmet", "gloves", "boots",
	}
)

// DefaultRules builds the standard rule chain around an id allow-list
func DefaultRules(allowList map[int64]struct{}) []Rule {
	return []Rule{
		{
			Name: RuleAllowList,
			Match: func(item types.RawItem) bool {
				if item.ID == 0 || len(allowList) == 0 {
					return false
				}
				_, ok := allowList[item.ID]
				return ok
			},
		},
		{
			Name: RuleName,
			Match: func(item types.RawItem) bool {
				name := fold(item.Name)
				for _, p := range namePatterns {
					if strings.Contains(name, p) {
						return true
					}
				}
				return false
			},
		},
		{
			Name: RuleTyped,
			Match: func(item types.RawItem) bool {
				if item.Stats.Quality == nil && len(item.Bonuses) == 0 {
					return false
				}
				t := fold(item.TypeText())
				if t == "" {
					return false
				}
				if isWeaponType(t) || t == armorType {
					return true
				}
				for _, f := range broadTypeFragments {
					if strings.Contains(t, f) {
						return true
					}
				}
				return false
			},
		},
	}
}

func isWeaponType(t string) bool {
	for _, w := range weaponTypes {
		if t == w {
			return true
		}
	}
	return false
}
