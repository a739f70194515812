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

package keygen

import (
	"math/big"

	"github.com/arx-crypto/arxfe/sample"
	"github.com/pkg/errors"
)

// ElGamal holds the parameters of an ElGamal group: a safe prime
// modulus P, a generator G of the subgroup of quadratic residues of
// order Q = (P-1)/2, and a public key Y.
type ElGamal struct {
	Y *big.Int
	G *big.Int
	P *big.Int
	Q *big.Int
}

// NewElGamal generates an ElGamal group with a safe prime modulus of
// the given bit length.
func NewElGamal(modulusLength int) (*ElGamal, error) {
	p, err := GetSafePrime(modulusLength)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate safe prime")
	}

	q := new(big.Int).Sub(p, one)
	q.Div(q, two)

	pMinusOne := new(big.Int).Sub(p, one)
	sampler := sample.NewUniformRange(big.NewInt(3), p)

	g := new(big.Int)
	for {
		g, err = sampler.Sample()
		if err != nil {
			return nil, err
		}
		// squaring places g in the subgroup of quadratic residues
		g.Exp(g, two, p)

		// avoid generators with known weaknesses
		if new(big.Int).Mod(pMinusOne, g).Sign() == 0 {
			continue
		}
		gInv := new(big.Int).ModInverse(g, p)
		if new(big.Int).Mod(pMinusOne, gInv).Sign() == 0 {
			continue
		}

		break
	}

	x, err := sampler.Sample()
	if err != nil {
		return nil, err
	}
	y := new(big.Int).Exp(g, x, p)

	return &ElGamal{
		Y: y,
		G: g,
		P: p,
		Q: q,
	}, nil
}
