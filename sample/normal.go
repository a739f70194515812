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
	"encoding/binary"
	"math"
	"math/big"
)

// normal holds the state shared by the discrete Gaussian samplers:
// the standard deviation sigma, the precision parameter n (bits of
// statistical approximation), and tables precomputed from them.
type normal struct {
	sigma *big.Float
	n     uint
	// preExp caches exp(-2^i / 2 sigma^2) for the bit-by-bit
	// comparison in isExpGreater
	preExp []*big.Float
	powN   *big.Int
	powNF  *big.Float
}

func newNormal(sigma *big.Float, n uint) *normal {
	powN := new(big.Int).Lsh(big.NewInt(1), n)
	powNF := new(big.Float).SetPrec(n).SetInt(powN)

	return &normal{
		sigma: sigma,
		n:     n,
		powN:  powN,
		powNF: powNF,
	}
}

// precompExp tabulates exp(-2^i / 2 sigma^2) for 0 <= i covering the
// interval up to sigma^2 * sqrt(n); beyond it the values are
// negligible. Evaluating the exponential function to arbitrary
// precision is a bottleneck, hence the table.
func (c *normal) precompExp() []*big.Float {
	maxFloat := new(big.Float).Mul(c.sigma, big.NewFloat(math.Sqrt(float64(c.n))))
	maxBits := maxFloat.MantExp(nil) * 2

	twoSigmaSquare := new(big.Float).SetPrec(c.n)
	twoSigmaSquare.Mul(c.sigma, c.sigma)
	twoSigmaSquare.Mul(twoSigmaSquare, big.NewFloat(2))

	tab := make([]*big.Float, maxBits+1)
	x := big.NewInt(1)
	for i := range tab {
		tab[i] = taylorExp(x, twoSigmaSquare, 8*c.n, c.n)
		x.Mul(x, big.NewInt(2))
	}

	return tab
}

// isExpGreater reports whether y > exp(-x / 2 sigma^2), evaluating the
// right side lazily from the precomputed table: the bits of x select
// table entries that tighten an upper and a lower bound until y falls
// outside one of them.
func (c *normal) isExpGreater(y *big.Float, x *big.Int) bool {
	maxBits := x.BitLen()

	upper := new(big.Float).SetPrec(c.n).SetInt64(1)
	lower := new(big.Float).SetPrec(c.n).Set(c.preExp[maxBits])
	lower.Quo(lower, c.preExp[0])
	if lower.Cmp(y) > 0 {
		return false
	}

	for i := maxBits - 1; i >= 0; i-- {
		if x.Bit(i) == 1 {
			upper.Mul(upper, c.preExp[i])
			if y.Cmp(upper) > 0 {
				return true
			}
		} else {
			lower.Quo(lower, c.preExp[i])
			if y.Cmp(lower) < 0 {
				return false
			}
		}
	}

	return false
}

// taylorExp approximates exp(-x/alpha) by a Taylor polynomial of
// degree at most k, accurate to at least 2^-n.
func taylorExp(x *big.Int, alpha *big.Float, k, n uint) *big.Float {
	val := new(big.Float).SetPrec(n).SetInt(x)
	val.Quo(val, alpha)

	res := new(big.Float).SetPrec(n).SetInt64(1)
	powVal := new(big.Float).SetPrec(n).Set(val)
	factorial := new(big.Float).SetPrec(n).SetInt64(1)
	term := new(big.Float).SetPrec(n)

	eps := new(big.Float).SetPrec(n).SetMantExp(big.NewFloat(1), -int(n))

	for i := uint(1); i <= k; i++ {
		term.Quo(powVal, factorial)
		res.Add(res, term)

		powVal.Mul(powVal, val)
		factorial.Mul(factorial, big.NewFloat(float64(i+1)))
		if term.Cmp(eps) < 0 {
			break
		}
	}

	return res.Quo(big.NewFloat(1), res)
}

// expCoef holds the coefficients of the polynomial approximation of
// 2^z on [0, 1) used by Bernoulli, highest degree first.
var expCoef = []float64{
	1.43291003789439094275872613876154915146798884961754e-7,
	1.2303944375555413249736938854916878938183799618855e-6,
	1.5359914219462011698283041005730353845137869939208e-5,
	1.5396043210538638053991311593904356413986533880234e-4,
	1.3333877552501097445841748978523355617653578519821e-3,
	9.6181209331756452318717975913386908359825611114502e-3,
	5.5504109841318247098307381293125217780470848083496e-2,
	0.24022650687652774559310842050763312727212905883789,
	0.69314718056193380668617010087473317980766296386719,
	1,
}

const (
	mantissaPrecision = uint64(52)
	mantissaMask      = (uint64(1) << mantissaPrecision) - 1
	bitLenForSample   = uint64(19)
	maxExp            = uint64(1023)
	cmpMask           = uint64(1) << 61
)

// Bernoulli returns true with probability 2^{-t/l^2}, where lSquareInv
// is 1/l^2. The exponential is evaluated with a polynomial
// approximation and the comparison against the random draw is done
// branchlessly on the mantissa and exponent, following "FACCT: FAst,
// Compact, and Constant-Time Discrete Gaussian Sampler over Integers"
// by Zhao, Steinfeld and Sakzad (https://eprint.iacr.org/2018/1234.pdf),
// where the relative error of this procedure is bounded by 2^-45.
func Bernoulli(t *big.Int, lSquareInv *big.Float) (bool, error) {
	aBig := new(big.Float).SetInt(t)
	aBig.Mul(aBig, lSquareInv)
	a, _ := aBig.Float64()
	a = -a

	negFloorA := -math.Floor(a)
	z := a + negFloorA

	powOfZ := expCoef[0]
	for i := 1; i < len(expCoef); i++ {
		powOfZ = powOfZ*z + expCoef[i]
	}

	powOfAMantissa := math.Float64bits(powOfZ) & mantissaMask
	powOfAExponent := (math.Float64bits(powOfZ) >> mantissaPrecision) - uint64(negFloorA)

	randBytes := make([]byte, 16)
	if _, err := rand.Read(randBytes); err != nil {
		return false, err
	}
	r1 := binary.LittleEndian.Uint64(randBytes[0:8]) >> (64 - (mantissaPrecision + 1))
	r2 := binary.LittleEndian.Uint64(randBytes[8:16]) >> (64 - bitLenForSample)

	check1 := powOfAMantissa | (uint64(1) << mantissaPrecision)
	check2 := uint64(1) << (bitLenForSample + powOfAExponent + 1 - maxExp)

	// constant time check of r1 < check1 && r2 < check2
	return (cmpMask&(r1-check1)&(r2-check2)) > 0 || powOfZ == 1, nil
}
