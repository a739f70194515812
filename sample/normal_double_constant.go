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
	"math/big"
)

// NormalDoubleConstant samples the discrete Gaussian with standard
// deviation sigma = k * SigmaCDT for an integer k, composing the
// constant-time NormalCDT base sampler with a constant-time Bernoulli
// acceptance test. Unlike NormalDouble its running time leaks nothing
// about the output value beyond the number of rejection rounds.
type NormalDoubleConstant struct {
	samplerCDT *NormalCDT
	k          *big.Int
	kSquareInv *big.Float
	twiceK     *big.Int
}

// NewNormalDoubleConstant returns a constant-time discrete Gaussian
// sampler with standard deviation k * SigmaCDT.
func NewNormalDoubleConstant(k *big.Int) *NormalDoubleConstant {
	kSquare := new(big.Float).SetInt(k)
	kSquare.Mul(kSquare, kSquare)

	return &NormalDoubleConstant{
		samplerCDT: NewNormalCDT(),
		k:          new(big.Int).Set(k),
		kSquareInv: new(big.Float).Quo(big.NewFloat(1), kSquare),
		twiceK:     new(big.Int).Lsh(k, 1),
	}
}

// Sample returns a discrete Gaussian value.
func (s *NormalDoubleConstant) Sample() (*big.Int, error) {
	checkVal := new(big.Int)
	res := new(big.Int)

	for {
		x, err := s.samplerCDT.Sample()
		if err != nil {
			return nil, err
		}

		y, err := rand.Int(rand.Reader, s.twiceK)
		if err != nil {
			return nil, err
		}
		sign := int64(1)
		if y.Cmp(s.k) >= 0 {
			sign = -1
			y.Sub(y, s.k)
		}

		// candidate kx + y, accepted with probability
		// 2^{-y(y + 2kx) / k^2}
		res.Mul(s.k, x)
		checkVal.Lsh(res, 1)
		checkVal.Add(checkVal, y)
		checkVal.Mul(checkVal, y)
		res.Add(res, y)

		accept, err := Bernoulli(checkVal, s.kSquareInv)
		if err != nil {
			return nil, err
		}
		if !accept || (res.Sign() == 0 && sign == -1) {
			continue
		}

		if sign == -1 {
			res.Neg(res)
		}

		return new(big.Int).Set(res), nil
	}
}
