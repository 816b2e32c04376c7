package identity

import (
	"fmt"
	"strings"
)

// Culture selects a name table.
type Culture int

const (
	CultureEnglish Culture = iota
	CultureChinese
	// CultureMixed picks a table at random for every new name.
	CultureMixed
)

// ParseCulture parses a culture name.
func ParseCulture(s string) (Culture, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "english":
		return CultureEnglish, nil
	case "chinese":
		return CultureChinese, nil
	case "mixed":
		return CultureMixed, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCulture, s)
	}
}

type nameTable struct {
	first []string
	last  []string
}

var tables = map[Culture]nameTable{
	CultureEnglish: {
		first: []string{
			"Steve", "Fred", "Stephen", "Joe", "Darren", "Ronnie", "Mark", "Alex", "Shaun", "Judd",
			"Paul", "Andrew", "Ray", "Kyren", "Neil", "Barry", "Stuart", "Anthony", "Graeme", "John",
			"Eddie", "Kirk", "Cliff", "Perrie", "Ricky", "Jimmy", "Daniel", "Tom", "Nigel", "Scott",
			"Lewis", "Damon", "Jim", "Sebastian", "Gareth", "David", "Michael", "Robert", "James", "Alan",
			"Harry", "Sterling", "Richard", "Bjorg", "Ivan", "Gary", "Martin", "George", "Oliver", "Charlie",
			"Jack", "Oscar", "Henry", "Tony",
		},
		last: []string{
			"Walton", "Davis", "Hendry", "Johnson", "Lumby", "O'Sullivan", "Williams", "Higgins", "Murphy", "Trump",
			"Walker", "Jackson", "Reardon", "Wilson", "Robertson", "Hawkins", "Bingham", "McGill", "Dott", "Spencer",
			"Charlton", "Stevens", "Thorburn", "Mans", "Walden", "White", "Wells", "Ford", "Bond", "Donaldson",
			"Hamilton", "Hill", "Clark", "Coe", "Southgate", "Coulthard", "Holt", "Redford", "Whale", "McManus",
			"Potter", "Moss", "Osman", "Borg", "Lendl", "Newman", "Freeman", "Peel", "Twist", "Chaplin",
			"Black", "Wilde", "Kissinger", "Curtis",
		},
	},
	CultureChinese: {
		first: []string{
			"Ding", "Marco", "Liang", "Yan", "Xiao", "Li", "Zhou", "Cao", "Junjie", "Zhang",
			"Chen", "Xu", "Lyu", "Yu", "Tian", "Mei", "Zhao",
		},
		last: []string{
			"Junhui", "Fu", "Wenbo", "Bingtao", "Guodong", "Hang", "Yuelong", "Yupeng", "Wang", "Anda",
			"Zhe", "Si", "Haotian", "Delu", "Pengfei", "Xiwen", "Xintong",
		},
	},
}
