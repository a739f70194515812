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

	"github.com/pkg/errors"
)

// NormalNegative samples the discrete Gaussian distribution centered
// on 0 by rejection: candidates are drawn uniformly from [-cut, cut]
// with cut = ceil(sigma * sqrt(n)) and accepted with probability
// proportional to exp(-x^2 / 2 sigma^2).
type NormalNegative struct {
	*normal
	cut             *big.Int
	twiceCutPlusOne *big.Int
}

// NewNormalNegative returns a rejection sampler of the discrete
// Gaussian with standard deviation sigma and precision n.
func NewNormalNegative(sigma *big.Float, n uint) *NormalNegative {
	cutF := new(big.Float).Mul(sigma, big.NewFloat(math.Sqrt(float64(n))))
	cut := new(big.Int)
	if _, acc := cutF.Int(cut); acc == big.Below {
		cut.Add(cut, big.NewInt(1))
	}

	twiceCutPlusOne := new(big.Int).Lsh(cut, 1)
	twiceCutPlusOne.Add(twiceCutPlusOne, big.NewInt(1))

	s := &NormalNegative{
		normal:          newNormal(sigma, n),
		cut:             cut,
		twiceCutPlusOne: twiceCutPlusOne,
	}
	s.preExp = s.precompExp()

	return s
}

// Sample returns a discrete Gaussian value obtained by rejection
// sampling.
func (c *NormalNegative) Sample() (*big.Int, error) {
	uF := new(big.Float).SetPrec(c.n)
	nSquare := new(big.Int)

	for {
		cand, err := rand.Int(rand.Reader, c.twiceCutPlusOne)
		if err != nil {
			return nil, errors.Wrap(err, "error while sampling")
		}
		cand.Sub(cand, c.cut)
		nSquare.Mul(cand, cand)

		// a second draw decides acceptance
		u, err := rand.Int(rand.Reader, c.powN)
		if err != nil {
			return nil, errors.Wrap(err, "error while sampling")
		}
		uF.SetInt(u)
		uF.Quo(uF, c.powNF)
		if !c.isExpGreater(uF, nSquare) {
			return cand, nil
		}
	}
}
