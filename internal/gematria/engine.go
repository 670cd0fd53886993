// internal/gematria/engine.go
package gematria

// satanicOffset is added to the ordinal position of every a–z letter.
const satanicOffset = 35

// masterNumbers stop digit-sum reduction even though they exceed 9.
var masterNumbers = map[int]bool{11: true, 22: true, 33: true}

// jewishTable holds the classical-weighted value of each letter a..z.
var jewishTable = [26]int{
	// a-i
	1, 2, 3, 4, 5, 6, 7, 8, 9,
	// j
	600,
	// k-s
	10, 20, 30, 40, 50, 60, 70, 80, 90,
	// t-z
	100, 200, 700, 900, 300, 400, 500,
}

type calcFunc func(token string) int

// calculators is exhaustive over AllSystems.
var calculators = [...]calcFunc{
	Ordinal:           ordinal,
	Reduced:           reduced,
	ReverseOrdinal:    reverseOrdinal,
	ClassicalWeighted: classicalWeighted,
	Simple:            ordinal,
	OffsetWeighted:    offsetWeighted,
}

// ComputeValue returns the token's value under system. Characters outside
// a-z contribute nothing; an invalid system yields 0.
func ComputeValue(token string, system NumeralSystem) int {
	if !system.Valid() {
		return 0
	}
	return calculators[system](token)
}

// ComputeValues returns a ValueVector whose domain is exactly systems.
func ComputeValues(token string, systems []NumeralSystem) ValueVector {
	values := make(ValueVector, len(systems))
	for _, s := range systems {
		values[s] = ComputeValue(token, s)
	}
	return values
}

// ComputeAll returns the token's values under every system.
func ComputeAll(token string) ValueVector {
	return ComputeValues(token, AllSystems)
}

// Reduce repeatedly sums the decimal digits of n until the result is a
// single digit or a master number.
func Reduce(n int) int {
	if n < 0 {
		n = -n
	}
	for n > 9 && !masterNumbers[n] {
		sum := 0
		for ; n > 0; n /= 10 {
			sum += n % 10
		}
		n = sum
	}
	return n
}

// position returns 1..26 for a..z and 0 for anything else.
func position(b byte) int {
	if b < 'a' || b > 'z' {
		return 0
	}
	return int(b-'a') + 1
}

func ordinal(token string) int {
	sum := 0
	for i := 0; i < len(token); i++ {
		sum += position(token[i])
	}
	return sum
}

func reduced(token string) int {
	return Reduce(ordinal(token))
}

func reverseOrdinal(token string) int {
	sum := 0
	for i := 0; i < len(token); i++ {
		if p := position(token[i]); p > 0 {
			sum += 27 - p
		}
	}
	return sum
}

func classicalWeighted(token string) int {
	sum := 0
	for i := 0; i < len(token); i++ {
		if p := position(token[i]); p > 0 {
			sum += jewishTable[p-1]
		}
	}
	return sum
}

func offsetWeighted(token string) int {
	sum := 0
	for i := 0; i < len(token); i++ {
		if p := position(token[i]); p > 0 {
			sum += p + satanicOffset
		}
	}
	return sum
}
