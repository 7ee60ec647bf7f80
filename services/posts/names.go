package posts

import (
	"fmt"
	"math/rand"
)

var (
	nameAdjectives = []string{
		"Tech", "Curious", "Inquisitive", "Silent", "Thoughtful",
		"Clever", "Witty", "Brave", "Bold", "Swift",
		"cloud", "code", "byte", "script", "debug",
		"pixel", "data", "node", "loop", "stack",
	}
	nameNouns = []string{
		"Explorer", "Thinker", "Coder", "Hacker", "Ninja",
		"Guru", "Wizard", "Samurai", "Ranger", "Voyager",
		"hawk", "lion", "tiger", "eagle", "wolf",
		"dragon", "phoenix", "unicorn", "griffin", "pegasus",
	}
)

// RandomName returns adjective, noun and a two digit number, e.g. CuriousExplorer57.
func RandomName() string {
	adj := nameAdjectives[rand.Intn(len(nameAdjectives))]
	noun := nameNouns[rand.Intn(len(nameNouns))]
	return fmt.Sprintf("%s%s%d", adj, noun, 10+rand.Intn(90))
}
