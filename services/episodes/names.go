package episodes

import (
	"fmt"
	"math/rand"
)

// NameAdjectives is the pool anonymous episode commenters are named from.
var NameAdjectives = []string{
	"Anonymous", "Secret", "Hidden", "Mystery",
	"Unknown", "Shadow", "Silent", "Invisible",
}

// RandomName returns an adjective followed by three digits, e.g. Shadow042.
func RandomName() string {
	return fmt.Sprintf("%s%03d", NameAdjectives[rand.Intn(len(NameAdjectives))], rand.Intn(1000))
}
