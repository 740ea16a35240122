package models

const (
	CategoryMetta   = "metta"
	CategoryKaruna  = "karuna"
	CategoryMudita  = "mudita"
	CategoryUpekkha = "upekkha"
)

const (
	ObjectSelf       = "self"
	ObjectBenefactor = "benefactor"
	ObjectFriend     = "friend"
	ObjectNeutral    = "neutral"
	ObjectDifficult  = "difficult"
	ObjectAll        = "all"
)

const (
	PracticeFormal = "formal"
	PracticeMicro  = "micro"
)

// Categories and Objects are the curriculum progression orders.
var (
	Categories = []string{CategoryMetta, CategoryKaruna, CategoryMudita, CategoryUpekkha}
	Objects    = []string{ObjectSelf, ObjectBenefactor, ObjectFriend, ObjectNeutral, ObjectDifficult, ObjectAll}
)

type Practice struct {
	ID                string   `yaml:"id" json:"id"`
	Title             string   `yaml:"title" json:"title"`
	Category          string   `yaml:"category" json:"category"`
	Object            string   `yaml:"object" json:"object"`
	Kind              string   `yaml:"type" json:"type"`
	Tradition         string   `yaml:"tradition" json:"tradition"`
	Source            string   `yaml:"source,omitempty" json:"source,omitempty"`
	DurationMinutes   int      `yaml:"duration,omitempty" json:"duration,omitempty"`
	Instructions      string   `yaml:"instructions" json:"instructions"`
	ReflectionPrompts []string `yaml:"reflection_prompts" json:"reflection_prompts"`
}

func (practice Practice) IsFormal() bool {
	return practice.Kind == PracticeFormal
}

// Invocation is an opening aspiration or closing dedication recited around a session.
type Invocation struct {
	ID     string `yaml:"id" json:"id"`
	Text   string `yaml:"text" json:"text"`
	Source string `yaml:"source" json:"source"`
}
