package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// maxCamelotDistance is the farthest two positions can be on the 12-step wheel.
// It is also the distance assigned to codes that cannot be parsed.
const maxCamelotDistance = 6

var pitchClassNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var naturals = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// Wheel numbers indexed by pitch class.
var (
	majorWheel = [12]int{8, 3, 10, 5, 12, 7, 2, 9, 4, 11, 6, 1}
	minorWheel = [12]int{5, 12, 7, 2, 9, 4, 11, 6, 1, 8, 3, 10}
)

// ParsePitchClass maps a tonic spelled with sharps or flats ("C#", "Db",
// "f#") to its pitch class in [0,12).
func ParsePitchClass(tonic string) (int, bool) {
	t := strings.TrimSpace(tonic)
	if t == "" {
		return 0, false
	}
	pc, ok := naturals[upper(t[0])]
	if !ok {
		return 0, false
	}
	switch rest := t[1:]; rest {
	case "":
	case "#", "♯":
		pc++
	case "b", "♭":
		pc--
	default:
		return 0, false
	}
	return (pc + 12) % 12, true
}

// PitchClassName returns the sharp spelling of a pitch class.
func PitchClassName(pc int) string {
	return pitchClassNames[((pc%12)+12)%12]
}

// ParseKeyName accepts the spellings the analysis services emit: "C#m",
// "Db major", "A Minor", "Gmin", "E".
func ParseKeyName(name string) (string, Mode, bool) {
	s := strings.TrimSpace(name)
	if s == "" {
		return "", "", false
	}

	rootLen := 1
	if len(s) > 1 && (s[1] == '#' || s[1] == 'b') {
		rootLen = 2
	} else if strings.HasPrefix(s[1:], "♯") || strings.HasPrefix(s[1:], "♭") {
		rootLen = 1 + len("♯")
	}

	pc, ok := ParsePitchClass(s[:rootLen])
	if !ok {
		return "", "", false
	}

	switch strings.ToLower(strings.TrimSpace(s[rootLen:])) {
	case "", "maj", "major":
		return PitchClassName(pc), Major, true
	case "m", "min", "minor":
		return PitchClassName(pc), Minor, true
	default:
		return "", "", false
	}
}

// ParseCamelot splits a code such as "8B" into its wheel number and letter.
func ParseCamelot(code string) (int, byte, bool) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if len(c) < 2 {
		return 0, 0, false
	}
	letter := c[len(c)-1]
	if letter != 'A' && letter != 'B' {
		return 0, 0, false
	}
	n, err := strconv.Atoi(c[:len(c)-1])
	if err != nil || n < 1 || n > 12 {
		return 0, 0, false
	}
	return n, letter, true
}

// CamelotDistance is the number of steps between two codes around the wheel.
// Letters are ignored. Unrecognised codes are maximally distant.
func CamelotDistance(a, b string) int {
	n1, _, ok1 := ParseCamelot(a)
	n2, _, ok2 := ParseCamelot(b)
	if !ok1 || !ok2 {
		return maxCamelotDistance
	}
	return wheelDistance(n1, n2)
}

func wheelDistance(n1, n2 int) int {
	d := n1 - n2
	if d < 0 {
		d = -d
	}
	if 12-d < d {
		return 12 - d
	}
	return d
}

// CamelotFor returns the code of a tonic and mode, e.g. ("A", Minor) -> "8A".
func CamelotFor(tonic string, mode Mode) (string, bool) {
	pc, ok := ParsePitchClass(tonic)
	if !ok {
		return "", false
	}
	switch mode {
	case Major:
		return fmt.Sprintf("%dB", majorWheel[pc]), true
	case Minor:
		return fmt.Sprintf("%dA", minorWheel[pc]), true
	default:
		return "", false
	}
}

// CamelotName returns the key name for a code, e.g. "8B" -> "C major".
func CamelotName(code string) (string, bool) {
	n, letter, ok := ParseCamelot(code)
	if !ok {
		return "", false
	}
	wheel, mode := majorWheel, Major
	if letter == 'A' {
		wheel, mode = minorWheel, Minor
	}
	for pc, num := range wheel {
		if num == n {
			return PitchClassName(pc) + " " + string(mode), true
		}
	}
	return "", false
}

// CompatibleKeys lists the codes a DJ would mix into from code: itself, its
// relative major/minor, and one step either way around the wheel.
func CompatibleKeys(code string) []string {
	n, letter, ok := ParseCamelot(code)
	if !ok {
		return nil
	}
	other := byte('A')
	if letter == 'A' {
		other = 'B'
	}
	prev := (n+10)%12 + 1
	next := n%12 + 1
	return []string{
		fmt.Sprintf("%d%c", n, letter),
		fmt.Sprintf("%d%c", n, other),
		fmt.Sprintf("%d%c", prev, letter),
		fmt.Sprintf("%d%c", next, letter),
	}
}

// nearestCompatibleKey picks the key compatible with anchor that needs the
// smallest move around the wheel from other. Ties keep CompatibleKeys order.
func nearestCompatibleKey(anchor, other string) string {
	candidates := CompatibleKeys(anchor)
	if len(candidates) == 0 {
		return ""
	}
	best, bestDist := candidates[0], maxCamelotDistance+1
	for _, c := range candidates {
		if d := CamelotDistance(c, other); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}
