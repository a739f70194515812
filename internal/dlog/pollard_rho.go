/*
 * Copyright (c) 2018 XLAB d.o.o
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package dlog

import (
	"fmt"
	"math/big"
	"runtime"
	"sync"
)

// maxRhoIterations bounds the cycle search; with overwhelming
// probability a collision appears after O(sqrt(n)) steps.
const maxRhoIterations = 1 << 32

// rhoState is a point of the Pollard walk together with the exponents
// tracking how it was reached: x = g^a * h^b.
type rhoState struct {
	x, a, b *big.Int
}

// step advances the walk by one of the three class functions chosen by
// x mod 3.
func (s *rhoState) step(h, g, p, n *big.Int) {
	switch new(big.Int).Mod(s.x, big.NewInt(3)).Int64() {
	case 0:
		s.x.Mul(s.x, s.x)
		s.a.Lsh(s.a, 1)
		s.b.Lsh(s.b, 1)
	case 1:
		s.x.Mul(s.x, g)
		s.a.Add(s.a, big.NewInt(1))
	case 2:
		s.x.Mul(s.x, h)
		s.b.Add(s.b, big.NewInt(1))
	}
	s.x.Mod(s.x, p)
	s.a.Mod(s.a, n)
	s.b.Mod(s.b, n)
}

// resolveCollision derives the discrete logarithm from two colliding
// walk states: g^a1 h^b1 = g^a2 h^b2 gives (b2 - b1) x = a1 - a2 mod n.
func resolveCollision(s1, s2 *rhoState, h, g, p, n *big.Int) (*big.Int, error) {
	r := new(big.Int).Sub(s2.b, s1.b)
	r.Mod(r, n)
	t := new(big.Int).Sub(s1.a, s2.a)
	t.Mod(t, n)

	if r.Sign() == 0 {
		return nil, fmt.Errorf("unusable collision")
	}

	d := new(big.Int).GCD(nil, nil, r, n)
	if d.Cmp(big.NewInt(1)) == 0 {
		q := new(big.Int).ModInverse(r, n)
		q.Mul(q, t)

		return q.Mod(q, n), nil
	}

	// with gcd(r, n) = d > 1 the congruence has d candidate solutions
	// q + j*(n/d); check them against h
	nDivD := new(big.Int).Div(n, d)
	q := new(big.Int).ModInverse(new(big.Int).Div(r, d), nDivD)
	if q == nil {
		return nil, fmt.Errorf("unusable collision")
	}
	q.Mul(q, new(big.Int).Div(t, d))
	q.Mod(q, nDivD)

	for j := big.NewInt(0); j.Cmp(d) < 0; j.Add(j, big.NewInt(1)) {
		if new(big.Int).Exp(g, q, p).Cmp(h) == 0 {
			return q, nil
		}
		q.Add(q, nDivD)
	}

	return nil, fmt.Errorf("unusable collision")
}

// pollardRho finds x with h = g^x mod p where g generates a subgroup
// of order n, using Floyd cycle detection over the classic three-class
// iteration.
func pollardRho(h, g, p, n *big.Int) (*big.Int, error) {
	tortoise := &rhoState{x: big.NewInt(1), a: big.NewInt(0), b: big.NewInt(0)}
	hare := &rhoState{x: big.NewInt(1), a: big.NewInt(0), b: big.NewInt(0)}

	for i := int64(0); i < maxRhoIterations; i++ {
		tortoise.step(h, g, p, n)
		hare.step(h, g, p, n)
		hare.step(h, g, p, n)

		if tortoise.x.Cmp(hare.x) == 0 {
			res, err := resolveCollision(tortoise, hare, h, g, p, n)
			if err != nil {
				return nil, ErrNotFound
			}

			return res, nil
		}
	}

	return nil, ErrNotFound
}

// pollardRhoParallel runs independent Pollard walks on all available
// cores, each started from a random-looking offset, returning the
// first solution found.
func pollardRhoParallel(h, g, p, n *big.Int) (*big.Int, error) {
	workers := runtime.NumCPU()
	resChan := make(chan *big.Int, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			// shift the walk by a known exponent offset so the
			// workers traverse different cycles
			offset := new(big.Int).Mod(big.NewInt(seed), n)
			hShifted := new(big.Int).Mul(h, new(big.Int).Exp(g, offset, p))
			hShifted.Mod(hShifted, p)

			res, err := pollardRho(hShifted, g, p, n)
			if err != nil {
				return
			}
			res.Sub(res, offset)
			resChan <- res.Mod(res, n)
		}(int64(w) * 1000003)
	}

	go func() {
		wg.Wait()
		close(resChan)
	}()

	res, ok := <-resChan
	if !ok {
		return nil, ErrNotFound
	}

	return res, nil
}

// pollardRhoFactorization factors n into primes with Pollard's rho
// factoring method, returning a map from prime factors to their
// multiplicities. The optional primeness argument bounds the Miller-
// Rabin rounds used for primality checks; nil selects 20 rounds.
func pollardRhoFactorization(n *big.Int, primeness *int) (map[string]int, error) {
	rounds := 20
	if primeness != nil {
		rounds = *primeness
	}

	factors := make(map[string]int)
	pending := []*big.Int{new(big.Int).Set(n)}

	for len(pending) > 0 {
		m := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		if m.Cmp(big.NewInt(1)) == 0 {
			continue
		}
		if m.ProbablyPrime(rounds) {
			factors[m.String()]++
			continue
		}
		// even numbers stall the x^2+c walk, peel the factor 2 first
		if m.Bit(0) == 0 {
			factors["2"]++
			pending = append(pending, new(big.Int).Rsh(m, 1))
			continue
		}

		d, err := rhoFactor(m)
		if err != nil {
			return nil, err
		}
		pending = append(pending, d, new(big.Int).Div(m, d))
	}

	return factors, nil
}

// rhoFactor finds a nontrivial factor of an odd composite m with the
// x^2 + c walk, retrying with increasing c on failure.
func rhoFactor(m *big.Int) (*big.Int, error) {
	one := big.NewInt(1)

	for c := int64(1); c < 100; c++ {
		x := big.NewInt(2)
		y := big.NewInt(2)
		d := big.NewInt(1)
		cc := big.NewInt(c)

		step := func(v *big.Int) {
			v.Mul(v, v)
			v.Add(v, cc)
			v.Mod(v, m)
		}

		for d.Cmp(one) == 0 {
			step(x)
			step(y)
			step(y)
			diff := new(big.Int).Sub(x, y)
			diff.Abs(diff)
			if diff.Sign() == 0 {
				break
			}
			d.GCD(nil, nil, diff, m)
		}
		if d.Cmp(one) != 0 && d.Cmp(m) != 0 {
			return d, nil
		}
	}

	return nil, fmt.Errorf("failed to find a factor of %s", m.String())
}
