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
	"fmt"
	"math/big"
)

// NormalDouble samples the discrete Gaussian distribution centered on
// 0 in two stages: a NormalCumulative draw with a small base sigma is
// stretched by the factor k = sigma / firstSigma and perturbed by a
// uniform draw, and the candidate is accepted with a probability that
// corrects the distribution to the target sigma. Arbitrary precision,
// not constant time.
type NormalDouble struct {
	*normal
	samplerCumu *NormalCumulative
	k           *big.Int
	twiceK      *big.Int
}

// NewNormalDouble returns a double-sampling discrete Gaussian sampler
// with standard deviation sigma and precision n. sigma must be an
// integer multiple of firstSigma, the deviation of the base sampler; a
// larger firstSigma trades a bigger precomputed table for fewer
// rejections.
func NewNormalDouble(sigma *big.Float, n uint, firstSigma *big.Float) (*NormalDouble, error) {
	kF := new(big.Float).Quo(sigma, firstSigma)
	if !kF.IsInt() {
		return nil, fmt.Errorf("sigma should be a multiple of firstSigma")
	}
	k, _ := kF.Int(nil)

	s := &NormalDouble{
		normal:      newNormal(sigma, n),
		samplerCumu: NewNormalCumulative(firstSigma, n, false),
		k:           k,
		twiceK:      new(big.Int).Lsh(k, 1),
	}
	s.preExp = s.precompExp()

	return s, nil
}

// Sample returns a discrete Gaussian value obtained by the two-stage
// procedure.
func (s *NormalDouble) Sample() (*big.Int, error) {
	checkVal := new(big.Int)
	uF := new(big.Float).SetPrec(s.n)

	for {
		x, err := s.samplerCumu.Sample()
		if err != nil {
			return nil, err
		}

		y, err := rand.Int(rand.Reader, s.twiceK)
		if err != nil {
			return nil, err
		}
		// the upper half of the uniform draw selects the negative sign
		sign := int64(1)
		if y.Cmp(s.k) >= 0 {
			sign = -1
			y.Sub(y, s.k)
		}

		// acceptance probability is exp(-y(y + 2kx) / 2 sigma^2)
		checkVal.Mul(s.k, x)
		checkVal.Lsh(checkVal, 1)
		checkVal.Add(checkVal, y)
		checkVal.Mul(checkVal, y)

		u, err := rand.Int(rand.Reader, s.powN)
		if err != nil {
			return nil, err
		}
		uF.SetInt(u)
		uF.Quo(uF, s.powNF)
		if s.isExpGreater(uF, checkVal) {
			continue
		}

		res := new(big.Int).Mul(s.k, x)
		res.Add(res, y)
		if sign == -1 {
			res.Neg(res)
		}

		// zero is produced on both branches of the sign, so it is
		// kept only half of the time
		if res.Sign() == 0 {
			bit, err := rand.Int(rand.Reader, big.NewInt(2))
			if err != nil {
				return nil, err
			}
			if bit.Sign() != 0 {
				continue
			}
		}

		return res, nil
	}
}
