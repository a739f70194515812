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

package sample

import (
	"crypto/rand"
	"math"
	"math/big"
	"sort"
)

// NormalCumulative samples the discrete Gaussian distribution centered
// on 0 via a precomputed cumulative table: a uniform draw is mapped to
// a sample by binary search. It is the fastest of the Gaussian
// samplers but its table grows with sigma, and sampling is not
// constant time.
type NormalCumulative struct {
	*normal
	// cumulative relative probabilities of 0, 1, ..., cut
	precomputed []*big.Int
	// twoSided extends sampling from non-negative values to all of Z
	twoSided bool
	// size of the uniform interval the search maps from
	sampleSize *big.Int
}

// NewNormalCumulative returns a sampler of the discrete Gaussian with
// standard deviation sigma and precision n, over all integers when
// twoSided is set and over non-negative integers otherwise. The
// cumulative table is built here so that Sample only searches it.
func NewNormalCumulative(sigma *big.Float, n uint, twoSided bool) *NormalCumulative {
	s := &NormalCumulative{
		normal:   newNormal(sigma, n),
		twoSided: twoSided,
	}
	s.precompute()

	s.sampleSize = new(big.Int).Set(s.precomputed[len(s.precomputed)-1])
	if twoSided {
		s.sampleSize.Mul(s.sampleSize, big.NewInt(2))
	}

	return s
}

// Sample returns a value distributed according to the discrete
// Gaussian underlying the precomputed table.
func (c *NormalCumulative) Sample() (*big.Int, error) {
	u, err := rand.Int(rand.Reader, c.sampleSize)
	if err != nil {
		return nil, err
	}

	total := c.precomputed[len(c.precomputed)-1]
	sign := int64(1)
	// for a two-sided sampler the draw above the table total selects
	// the negative branch
	if c.twoSided && u.Cmp(total) >= 0 {
		u.Sub(u, total)
		sign = -1
	}

	i := sort.Search(len(c.precomputed), func(i int) bool {
		return u.Cmp(c.precomputed[i]) <= 0
	})

	return big.NewInt(sign * int64(i-1)), nil
}

// precompute fills the cumulative table of relative probabilities
// proportional to exp(-i^2 / 2 sigma^2) for i up to sigma * sqrt(n).
func (c *NormalCumulative) precompute() {
	cutF := new(big.Float).Mul(c.sigma, big.NewFloat(math.Sqrt(float64(c.n))))
	cut, _ := cutF.Int64()
	cut++

	tab := make([]*big.Int, cut+1)
	tab[0] = big.NewInt(0)

	twoSigmaSquare := new(big.Float).Mul(c.sigma, c.sigma)
	twoSigmaSquare.Mul(twoSigmaSquare, big.NewFloat(2))

	iSquare := new(big.Int)
	prob := new(big.Float).SetPrec(c.n)
	add := new(big.Int)
	for i := int64(0); i < cut; i++ {
		iSquare.SetInt64(i * i)
		value := taylorExp(iSquare, twoSigmaSquare, 8*c.n, c.n)
		// a two-sided sampler would count 0 twice, once per sign,
		// so its probability is halved
		if i == 0 && c.twoSided {
			value.Quo(value, big.NewFloat(2))
		}
		prob.Mul(value, c.powNF)
		prob.Int(add)
		tab[i+1] = new(big.Int).Add(tab[i], add)
	}

	c.precomputed = tab
}
