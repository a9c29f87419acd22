package models

// Category is a value of the fixed post tag vocabulary.
type Category string

const (
	CategoryClub             Category = "Club"
	CategoryStudentCouncil   Category = "Student Council"
	CategorySports           Category = "Sports"
	CategoryArts             Category = "Arts"
	CategoryMusic            Category = "Music"
	CategoryCommunityService Category = "Community Service"
	CategoryAcademic         Category = "Academic"
	CategoryEvent            Category = "Event"
)

// Categories lists the vocabulary in display order.
var Categories = []Category{
	CategoryClub,
	CategoryStudentCouncil,
	CategorySports,
	CategoryArts,
	CategoryMusic,
	CategoryCommunityService,
	CategoryAcademic,
	CategoryEvent,
}

// Valid reports whether c belongs to the vocabulary.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
