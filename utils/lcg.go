package utils

import "fmt"

// LCG is a linear congruential generator over [start, end) with a full
// cycle: every number in the interval is produced once before repetition,
// deterministically from the seed, without storing the sequence.
type LCG struct {
	start      int
	end        int
	multiplier int
	increment  int
	modulus    int
	state      int
}

func NewLCG(intervalStart, intervalEnd, multiplier, increment, seed int) (*LCG, error) {
	modulus := intervalEnd - intervalStart
	if err := validateLCGParameters(intervalStart, intervalEnd, modulus, multiplier, increment, seed); err != nil {
		return nil, err
	}
	return &LCG{
		start:      intervalStart,
		end:        intervalEnd,
		multiplier: multiplier,
		increment:  increment,
		modulus:    modulus,
		state:      seed - intervalStart,
	}, nil
}

// Next returns the next number in the sequence.
func (g *LCG) Next() int {
	g.state = (g.multiplier*g.state + g.increment) % g.modulus
	return g.state + g.start
}

// validateLCGParameters checks the Hull-Dobell conditions for a full cycle.
func validateLCGParameters(start, end, modulus, multiplier, increment, seed int) error {
	if start > seed || seed >= end {
		return fmt.Errorf("seed must be within the specified interval")
	}
	if modulus <= 0 {
		return fmt.Errorf("interval must not be empty")
	}
	if gcd(multiplier, modulus) != 1 {
		return fmt.Errorf("multiplier and modulus must be coprime")
	}
	for _, primeFactor := range primeFactors(modulus) {
		if (multiplier-1)%primeFactor != 0 {
			return fmt.Errorf("multiplier - 1 must be divisible by %d (prime factor of modulus)", primeFactor)
		}
	}
	if gcd(increment, modulus) != 1 {
		return fmt.Errorf("increment and modulus must be coprime")
	}
	return nil
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func primeFactors(n int) []int {
	factors := make([]int, 0)
	for i := 2; i*i <= n; i++ {
		for n%i == 0 {
			factors = append(factors, i)
			n /= i
		}
	}
	if n > 1 {
		factors = append(factors, n)
	}
	return factors
}
