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

package simple

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"math/bits"

	"github.com/arx-crypto/arxfe/data"
	"github.com/arx-crypto/arxfe/internal"
	"github.com/arx-crypto/arxfe/sample"
	"github.com/pkg/errors"
)

// LWEParams holds the public parameters of the simple LWE scheme.
type LWEParams struct {
	// length of the inner product vectors
	L int
	// main security parameter
	N int
	// number of LWE samples
	M int

	// bounds on the coordinates of x (plaintext) and y (key) vectors
	BoundX *big.Int
	BoundY *big.Int

	// message space modulus
	P *big.Int
	// ciphertext and key modulus
	Q *big.Int

	// standard deviation of the noise, scaled to Q
	SigmaQ *big.Float

	// public LWE matrix of dimensions M x N
	A data.Matrix
}

// LWE is an inner product scheme secure under the LWE assumption,
// following the LWE construction of Abdalla, Bourse, De Caro and
// Pointcheval: "Simple Functional Encryption Schemes for Inner
// Products".
type LWE struct {
	Params *LWEParams
}

// NewLWE configures a new LWE scheme for vectors of length l with the
// given coordinate bounds, deriving the moduli p and q, the sample
// count m and the noise width from the security parameter n so that
// they satisfy the bounds of the thesis "Functional Encryption for
// Inner-Product Evaluations", Section 8.3.1
// (https://www.di.ens.fr/~fbourse/publications/Thesis.pdf).
// Note that this is a prototype implementation and should not be used
// in production before security testing against various known attacks
// has been performed.
func NewLWE(l int, boundX, boundY *big.Int, n int) (*LWE, error) {
	// p needs to exceed 2 * l * boundX * boundY
	nBitsP := boundX.BitLen() + boundY.BitLen() + bits.Len(uint(l)) + 2
	p, err := rand.Prime(rand.Reader, nBitsP)
	if err != nil {
		return nil, errors.Wrap(err, "cannot generate public parameters")
	}

	pF := new(big.Float).SetInt(p)
	boundXF := new(big.Float).SetInt(boundX)
	boundYF := new(big.Float).SetInt(boundY)

	// q grows as (K * sqrt(K))ish in K = p * boundY * (boundX sqrt(l) + 1)
	// * 8n sqrt(n+l+1), dominating all noise magnitudes
	val := new(big.Float).Mul(boundXF, big.NewFloat(math.Sqrt(float64(l))))
	val.Add(val, big.NewFloat(1))
	x := new(big.Float).Mul(val, pF)
	x.Mul(x, boundYF)
	x.Mul(x, big.NewFloat(float64(8*n)*math.Sqrt(float64(n+l+1))))
	x.Mul(x, new(big.Float).Sqrt(x))
	xI, _ := x.Int(nil)

	nBitsQ := xI.BitLen() + 1
	q, err := rand.Prime(rand.Reader, nBitsQ)
	if err != nil {
		return nil, errors.Wrap(err, "cannot generate public parameters")
	}

	m := (n+l+1)*nBitsQ + 2*n + 1

	sigma := new(big.Float).SetPrec(uint(n))
	sigma.Quo(big.NewFloat(1/(2*math.Sqrt(float64(2*l*m*n)))), pF)
	sigma.Quo(sigma, boundYF)
	sigmaQ := new(big.Float).Mul(sigma, new(big.Float).SetInt(q))
	// rounding sigmaQ to an integer lets NormalDouble sample faster
	sigmaQI, _ := sigmaQ.Int(nil)
	sigmaQ.SetInt(sigmaQI)
	sigmaQ.Add(sigmaQ, big.NewFloat(1))

	// the derived deviation must leave room for the theoretical bound
	val.Quo(sigmaQ, val)
	if val.Cmp(big.NewFloat(2*math.Sqrt(float64(n)))) <= 0 {
		return nil, fmt.Errorf("parameters generation failed, sigmaQ too small")
	}

	A, err := data.NewRandomMatrix(m, n, sample.NewUniform(q))
	if err != nil {
		return nil, errors.Wrap(err, "cannot generate public parameters")
	}

	return &LWE{
		Params: &LWEParams{
			L:      l,
			N:      n,
			M:      m,
			BoundX: boundX,
			BoundY: boundY,
			P:      p,
			Q:      q,
			SigmaQ: sigmaQ,
			A:      A,
		},
	}, nil
}

// GenerateSecretKey generates a master secret key, a uniform N x L
// matrix over Z_q.
func (s *LWE) GenerateSecretKey() (data.Matrix, error) {
	return data.NewRandomMatrix(s.Params.N, s.Params.L, sample.NewUniform(s.Params.Q))
}

// GeneratePublicKey derives the master public key
// PK = (A * SK + E) mod q from the secret key, with E a discrete
// Gaussian noise matrix of deviation SigmaQ.
func (s *LWE) GeneratePublicKey(SK data.Matrix) (data.Matrix, error) {
	if !SK.CheckDims(s.Params.N, s.Params.L) {
		return nil, internal.ErrMalformedSecKey
	}

	sampler, err := sample.NewNormalDouble(s.Params.SigmaQ, uint(s.Params.N), big.NewFloat(1))
	if err != nil {
		return nil, errors.Wrap(err, "error generating public key")
	}
	E, err := data.NewRandomMatrix(s.Params.M, s.Params.L, sampler)
	if err != nil {
		return nil, errors.Wrap(err, "error generating public key")
	}

	PK, _ := s.Params.A.Mul(SK)
	PK, _ = PK.Mod(s.Params.Q).Add(E)

	return PK.Mod(s.Params.Q), nil
}

// DeriveKey derives the functional key SK * y mod q for inner products
// with y.
func (s *LWE) DeriveKey(y data.Vector, SK data.Matrix) (data.Vector, error) {
	if err := y.CheckBound(s.Params.BoundY); err != nil {
		return nil, err
	}
	if !SK.CheckDims(s.Params.N, s.Params.L) {
		return nil, internal.ErrMalformedSecKey
	}

	skY, err := SK.MulVec(y)
	if err != nil {
		return nil, internal.ErrMalformedInput
	}

	return skY.Mod(s.Params.Q), nil
}

// Encrypt encrypts x under the public key: it samples a binary vector
// r of length m and outputs (A^T r, PK^T r + t(x)) mod q, where t is
// the centering function.
func (s *LWE) Encrypt(x data.Vector, PK data.Matrix) (data.Vector, error) {
	if err := x.CheckBound(s.Params.BoundX); err != nil {
		return nil, err
	}
	if !PK.CheckDims(s.Params.M, s.Params.L) {
		return nil, internal.ErrMalformedPubKey
	}
	if len(x) != s.Params.L {
		return nil, internal.ErrMalformedInput
	}

	r, err := data.NewRandomVector(s.Params.M, sample.NewBit())
	if err != nil {
		return nil, errors.Wrap(err, "error in encrypt")
	}

	// the first n coordinates of the cipher
	ct0, _ := s.Params.A.Transpose().MulVec(r)
	ct0 = ct0.Mod(s.Params.Q)

	// the last l coordinates carry the centered message
	ctLast, _ := PK.Transpose().MulVec(r)
	ctLast = ctLast.Add(s.center(x)).Mod(s.Params.Q)

	return append(ct0, ctLast...), nil
}

// center computes the centering function t(v) = floor(v * q / p) mod q
// coordinate-wise.
func (s *LWE) center(v data.Vector) data.Vector {
	return v.Apply(func(x *big.Int) *big.Int {
		t := new(big.Int).Mul(x, s.Params.Q)
		t.Div(t, s.Params.P)

		return t.Mod(t, s.Params.Q)
	})
}

// Decrypt recovers the inner product <x, y> from a ciphertext of x and
// a functional key for y: the value <y, ctLast> - <ct0, skY> mod q is
// lifted to (-q/2, q/2] and rounded by p/q.
func (s *LWE) Decrypt(ct, skY, y data.Vector) (*big.Int, error) {
	if err := y.CheckBound(s.Params.BoundY); err != nil {
		return nil, err
	}
	if len(skY) != s.Params.N {
		return nil, internal.ErrMalformedDecKey
	}
	if len(y) != s.Params.L {
		return nil, internal.ErrMalformedInput
	}
	if len(ct) != s.Params.N+s.Params.L {
		return nil, internal.ErrMalformedCipher
	}

	ct0 := ct[:s.Params.N]
	ctLast := ct[s.Params.N:]

	yDotCtLast, _ := y.Dot(ctLast)
	ct0DotSkY, _ := ct0.Dot(skY)

	halfQ := new(big.Int).Rsh(s.Params.Q, 1)

	d := new(big.Int).Sub(yDotCtLast, ct0DotSkY)
	d.Mod(d, s.Params.Q)
	if d.Cmp(halfQ) > 0 {
		d.Sub(d, s.Params.Q)
	}

	// rounded division d * p / q
	d.Mul(d, s.Params.P)
	d.Add(d, halfQ)

	return d.Div(d, s.Params.Q), nil
}
