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
	"math/big"

	"github.com/fentec-project/bn256"
)

// bruteForce checks all exponents below bound in turn. A nil bound
// stands for p-1.
func bruteForce(h, g, p, bound *big.Int) (*big.Int, error) {
	if bound == nil {
		bound = new(big.Int).Sub(p, big.NewInt(1))
	}

	one := big.NewInt(1)
	for i := big.NewInt(0); i.Cmp(bound) < 0; i.Add(i, one) {
		if new(big.Int).Exp(g, i, p).Cmp(h) == 0 {
			return i, nil
		}
	}

	return nil, ErrNotFound
}

// bruteForceBN256 checks all exponents up to bound in bn256.GT. A nil
// bound stands for the group order.
func bruteForceBN256(h, g *bn256.GT, bound *big.Int) (*big.Int, error) {
	if bound == nil {
		bound = bn256.Order
	}

	one := big.NewInt(1)
	x := new(bn256.GT).ScalarBaseMult(big.NewInt(0))
	for i := big.NewInt(0); i.Cmp(bound) <= 0; i.Add(i, one) {
		if x.String() == h.String() {
			return new(big.Int).Set(i), nil
		}
		x.Add(x, g)
	}

	return nil, ErrNotFound
}
