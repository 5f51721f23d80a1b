package sample

import "fmt"

// Release is the fixture release.
const Release = "1.0.0"

const (
	// LowScore marks a weak candidate.
	LowScore = 200
	// HighScore marks a strong candidate.
	HighScore = 500
)

// DefaultLabel is a package variable.
var DefaultLabel = "hello"

// Entity is embedded by Candidate.
type Entity struct {
	ID int
}

// Candidate has an embedded field and tagged fields.
type Candidate struct {
	Entity
	Name, Alias string `json:"name"`
	Rank        int    `json:"rank"`
}

// Scorer is an interface.
type Scorer interface {
	fmt.Stringer
	Score(ctx string, data interface{}) (int, error)
	Close()
}

// Compare is a function.
func Compare(a int, b string) bool {
	normalize("test")
	return true
}

func normalize(s string) {}

// Describe is a method.
func (c *Candidate) Describe(msg string) {
	fmt.Println(msg, c.Name)
	_ = Entity{ID: 1}
	_ = make([]int, 0)
}
