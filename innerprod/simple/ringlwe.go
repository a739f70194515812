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

// RingLWEParams holds the public parameters of the ring-LWE scheme.
type RingLWEParams struct {
	// length of the inner product vectors
	L int
	// main security parameter and degree of the polynomial ring;
	// must be a power of 2
	N int

	// standard deviation of the discrete Gaussian sampler
	Sigma *big.Float

	// bound on the coordinates of input vectors
	Bound *big.Int

	// message space modulus
	P *big.Int
	// ciphertext and key modulus
	Q *big.Int

	// random public polynomial with N coefficients
	A data.Vector
}

// RingLWE is an inner product scheme built on the ring-LWE problem,
// considerably more efficient than the plain LWE scheme. It operates
// in the ring of polynomials R = Z[x]/(x^n + 1); a single ciphertext
// encrypts a matrix X and a functional key for y decrypts the whole
// product y * X.
type RingLWE struct {
	Params  *RingLWEParams
	Sampler *sample.NormalCumulative
}

// NewRingLWE configures a new ring-LWE scheme for inner products of
// l-dimensional vectors bounded by bound, with ring degree n (a power
// of 2). The moduli p and q and the sampler deviation sigma are
// derived from (l, n, bound): p is a prime exceeding 2 * l * bound^2,
// sigma is sqrt(n), and q is a prime large enough that q/p dominates
// the accumulated noise of decryption.
func NewRingLWE(l, n int, bound *big.Int) (*RingLWE, error) {
	if !isPowOf2(n) {
		return nil, fmt.Errorf("security parameter n is not a power of 2")
	}

	// p must be a prime with p >= 2 * l * bound^2
	nBitsP := 2*bound.BitLen() + bits.Len(uint(l)) + 2
	p, err := rand.Prime(rand.Reader, nBitsP)
	if err != nil {
		return nil, errors.Wrap(err, "cannot generate public parameters")
	}

	sigma := big.NewFloat(math.Sqrt(float64(n)))

	// noise accumulated by decryption is bounded by roughly
	// l * bound * n * sigma^2 with small constants; q/p must exceed it
	noise := new(big.Int).Mul(big.NewInt(int64(l)), bound)
	noise.Mul(noise, big.NewInt(int64(n)))
	noise.Mul(noise, big.NewInt(int64(n)))
	noise.Mul(noise, big.NewInt(32))

	nBitsQ := nBitsP + noise.BitLen() + 8
	q, err := rand.Prime(rand.Reader, nBitsQ)
	if err != nil {
		return nil, errors.Wrap(err, "cannot generate public parameters")
	}

	a, err := data.NewRandomVector(n, sample.NewUniform(q))
	if err != nil {
		return nil, errors.Wrap(err, "cannot generate random polynomial")
	}

	return &RingLWE{
		Params: &RingLWEParams{
			L:     l,
			N:     n,
			Sigma: sigma,
			Bound: bound,
			P:     p,
			Q:     q,
			A:     a,
		},
		Sampler: sample.NewNormalCumulative(sigma, uint(n), true),
	}, nil
}

// center computes the centering function t(x) = floor(x * q / p) mod q
// entry-wise.
func (s *RingLWE) center(X data.Matrix) data.Matrix {
	return X.Apply(func(x *big.Int) *big.Int {
		t := new(big.Int).Mul(x, s.Params.Q)
		t.Div(t, s.Params.P)

		return t.Mod(t, s.Params.Q)
	})
}

// GenerateSecretKey generates a master secret key, an l x n matrix of
// small discrete Gaussian entries whose rows are ring elements.
func (s *RingLWE) GenerateSecretKey() (data.Matrix, error) {
	return data.NewRandomMatrix(s.Params.L, s.Params.N, s.Sampler)
}

// GeneratePublicKey derives the master public key from SK, row by row
// as PK_i = (a * SK_i + E_i) mod q with ring multiplication.
func (s *RingLWE) GeneratePublicKey(SK data.Matrix) (data.Matrix, error) {
	if !SK.CheckDims(s.Params.L, s.Params.N) {
		return nil, internal.ErrMalformedSecKey
	}

	E, err := data.NewRandomMatrix(s.Params.L, s.Params.N, s.Sampler)
	if err != nil {
		return nil, errors.Wrap(err, "public key generation failed")
	}

	PK := make(data.Matrix, s.Params.L)
	for i := range PK {
		pkI, _ := SK[i].MulAsPolyInRing(s.Params.A)
		PK[i] = pkI.Add(E[i])
	}

	return PK.Mod(s.Params.Q), nil
}

// DeriveKey derives the functional key for y, the linear combination
// of the secret key rows by y reduced mod q.
func (s *RingLWE) DeriveKey(y data.Vector, SK data.Matrix) (data.Vector, error) {
	if err := y.CheckBound(s.Params.Bound); err != nil {
		return nil, err
	}
	if !SK.CheckDims(s.Params.L, s.Params.N) {
		return nil, internal.ErrMalformedSecKey
	}

	skY, err := SK.Transpose().MulVec(y)
	if err != nil {
		return nil, internal.ErrMalformedInput
	}

	return skY.Mod(s.Params.Q), nil
}

// Encrypt encrypts an l x n matrix X whose rows are ring elements. The
// ciphertext has l + 1 rows: CT_i = (PK_i * r + E_i + t(X_i)) mod q
// and a last row a * r + e binding the randomness r.
func (s *RingLWE) Encrypt(X, PK data.Matrix) (data.Matrix, error) {
	if err := X.CheckBound(s.Params.Bound); err != nil {
		return nil, err
	}
	if !PK.CheckDims(s.Params.L, s.Params.N) {
		return nil, internal.ErrMalformedPubKey
	}
	if !X.CheckDims(s.Params.L, s.Params.N) {
		return nil, internal.ErrMalformedInput
	}

	r, err := data.NewRandomVector(s.Params.N, s.Sampler)
	if err != nil {
		return nil, errors.Wrap(err, "error in encrypt")
	}
	E, err := data.NewRandomMatrix(s.Params.L, s.Params.N, s.Sampler)
	if err != nil {
		return nil, errors.Wrap(err, "error in encrypt")
	}

	CT0 := make(data.Matrix, s.Params.L)
	for i := range CT0 {
		ct0I, _ := PK[i].MulAsPolyInRing(r)
		CT0[i] = ct0I.Add(E[i])
	}
	CT0, _ = CT0.Mod(s.Params.Q).Add(s.center(X))
	CT0 = CT0.Mod(s.Params.Q)

	ct1, _ := s.Params.A.MulAsPolyInRing(r)
	e, err := data.NewRandomVector(s.Params.N, s.Sampler)
	if err != nil {
		return nil, errors.Wrap(err, "error in encrypt")
	}
	ct1 = ct1.Add(e).Mod(s.Params.Q)

	return append(CT0, ct1), nil
}

// Decrypt recovers the vector of inner products of the rows of X with
// y from a ciphertext of X and a functional key for y.
func (s *RingLWE) Decrypt(CT data.Matrix, skY, y data.Vector) (data.Vector, error) {
	if err := y.CheckBound(s.Params.Bound); err != nil {
		return nil, err
	}
	if len(skY) != s.Params.N {
		return nil, internal.ErrMalformedDecKey
	}
	if len(y) != s.Params.L {
		return nil, internal.ErrMalformedInput
	}
	if !CT.CheckDims(s.Params.L+1, s.Params.N) {
		return nil, internal.ErrMalformedCipher
	}

	CT0 := CT[:s.Params.L]
	ct1 := CT[s.Params.L]

	d, _ := CT0.Transpose().MulVec(y)
	d = d.Mod(s.Params.Q)

	ct1SkY, _ := ct1.MulAsPolyInRing(skY)
	d = d.Add(ct1SkY.Neg()).Mod(s.Params.Q)

	halfQ := new(big.Int).Rsh(s.Params.Q, 1)

	return d.Apply(func(x *big.Int) *big.Int {
		if x.Cmp(halfQ) > 0 {
			x.Sub(x, s.Params.Q)
		}
		x.Mul(x, s.Params.P)
		x.Add(x, halfQ)

		return x.Div(x, s.Params.Q)
	}), nil
}

// isPowOf2 reports whether x is a power of 2.
func isPowOf2(x int) bool {
	return x > 0 && x&(x-1) == 0
}
