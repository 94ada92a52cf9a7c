package family

import (
	"fmt"
	"strings"
)

// Gender is the closed classification used to validate parent roles.
type Gender string

const (
	Male    Gender = "M"
	Female  Gender = "F"
	Unknown Gender = "NA"
)

// genderMapping lists the accepted tokens for one canonical value.
type genderMapping struct {
	tokens []string
	gender Gender
}

// genderMappings is the only place tokens are defined. Tokens are lower case;
// input is lower-cased before lookup.
var genderMappings = []genderMapping{
	{tokens: []string{"m", "male"}, gender: Male},
	{tokens: []string{"f", "female"}, gender: Female},
	{tokens: []string{"na", "unknown"}, gender: Unknown},
}

var genderByToken = func() map[string]Gender {
	m := make(map[string]Gender)
	for _, gm := range genderMappings {
		for _, t := range gm.tokens {
			m[t] = gm.gender
		}
		m[strings.ToLower(string(gm.gender))] = gm.gender
	}
	return m
}()

// GetGender canonicalizes a case-insensitive token to a Gender.
func GetGender(token string) (Gender, error) {
	if g, ok := genderByToken[strings.ToLower(strings.TrimSpace(token))]; ok {
		return g, nil
	}
	return "", relatedPersonErrorf("illegal gender %q; allowed genders: %s",
		token, strings.ReplaceAll(GendersStringMappings(), "\n", "; "))
}

// GendersStringMappings renders the accepted token mappings, one per line:
//
//	'm' or 'male' -> 'M'
func GendersStringMappings() string {
	lines := make([]string, 0, len(genderMappings))
	for _, gm := range genderMappings {
		quoted := make([]string, len(gm.tokens))
		for i, t := range gm.tokens {
			quoted[i] = "'" + t + "'"
		}
		lines = append(lines, fmt.Sprintf("%s -> '%s'", strings.Join(quoted, " or "), gm.gender))
	}
	return strings.Join(lines, "\n")
}

func (g Gender) String() string {
	return string(g)
}
