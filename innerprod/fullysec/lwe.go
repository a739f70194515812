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

package fullysec

import (
	"crypto/rand"
	"math"
	"math/big"

	"github.com/arx-crypto/arxfe/data"
	"github.com/arx-crypto/arxfe/internal"
	"github.com/arx-crypto/arxfe/sample"
	"github.com/pkg/errors"
)

// LWEParams holds the public parameters of the fully secure LWE
// scheme.
type LWEParams struct {
	// length of the inner product vectors
	L int
	// main security parameter
	N int
	// number of samples
	M int

	// bounds on the coordinates of x (plaintext) and y (key) vectors
	BoundX *big.Int
	BoundY *big.Int

	// modulus for the resulting inner product, derived from L and the
	// bounds
	K *big.Int
	// modulus for ciphertext and keys, considerably larger than K
	Q *big.Int

	// standard deviation of the encryption noise and its precomputed
	// multiple of sample.SigmaCDT
	SigmaQ  *big.Float
	LSigmaQ *big.Int
	// standard deviations for the two halves of the secret key matrix,
	// with their precomputed multiples of sample.SigmaCDT
	Sigma1  *big.Float
	LSigma1 *big.Int
	Sigma2  *big.Float
	LSigma2 *big.Int

	// public LWE matrix of dimensions M x N
	A data.Matrix
}

// LWE is an inner product scheme secure against adaptive adversaries
// under the LWE assumption, based on the LWE variant of Agrawal,
// Libert and Stehle: "Fully secure functional encryption for inner
// products, from standard assumptions". Unlike the simple LWE scheme
// the secret key is a non-square Gaussian matrix.
type LWE struct {
	Params *LWEParams
}

// NewLWE configures a new fully secure LWE scheme for vectors of
// length l with the given coordinate bounds and security parameter n.
// The remaining parameters are derived following the requirements of
// the paper; since the bit length of q appears on both sides of those
// requirements, the derivation runs as a fixed-point iteration over
// it. Note that this is a prototype implementation and should not be
// used in production before security testing against various known
// attacks has been performed.
func NewLWE(l, n int, boundX, boundY *big.Int) (*LWE, error) {
	// K = 2 * l * boundX * boundY bounds the magnitude of results
	K := new(big.Int).Mul(boundX, boundY)
	K.Mul(K, big.NewInt(int64(2*l)))
	kF := new(big.Float).SetInt(K)
	kSquaredF := new(big.Float).Mul(kF, kF)

	nF := float64(n)

	nBitsQ := 1
	var sigma, sigma1, sigma2 *big.Float
	var lSigma1, lSigma2 *big.Int
	for i := 1; true; i++ {
		// assume q will have at most i bits and bound m accordingly
		boundMF := float64(n * i)
		log2M := math.Log2(boundMF)
		sqrtNLogM := math.Sqrt(nF * log2M)

		max := new(big.Float)
		if kSquaredF.Cmp(big.NewFloat(boundMF)) > 0 {
			max.SetFloat64(boundMF)
		} else {
			max.Set(kSquaredF)
		}
		sqrtMax := new(big.Float).Sqrt(max)

		sigma1 = new(big.Float).Mul(big.NewFloat(sqrtNLogM), sqrtMax)
		// NormalDoubleConstant samples at multiples of SigmaCDT only
		lSigma1F := new(big.Float).Quo(sigma1, sample.SigmaCDT)
		lSigma1, _ = lSigma1F.Int(nil)
		sigma1.Mul(sample.SigmaCDT, lSigma1F)

		mulVal := math.Sqrt(nF) * math.Pow(nF, 3) *
			math.Pow(math.Sqrt(log2M), 5) * math.Sqrt(boundMF)
		sigma2 = new(big.Float).Mul(big.NewFloat(mulVal), max)
		lSigma2F := new(big.Float).Quo(sigma2, sample.SigmaCDT)
		lSigma2, _ = lSigma2F.Int(nil)
		sigma2.Mul(sample.SigmaCDT, lSigma2F)

		sigma1Square := new(big.Float).Mul(sigma1, sigma1)
		sigma2Square := new(big.Float).Mul(sigma2, sigma2)

		noiseBound := new(big.Float).Add(sigma1Square, sigma2Square)
		noiseBound.Sqrt(noiseBound)
		noiseBound.Mul(noiseBound, big.NewFloat(math.Sqrt(nF)))

		sigma = new(big.Float).Quo(big.NewFloat(1), kSquaredF)
		sigma.Quo(sigma, noiseBound)
		sigma.Quo(sigma, big.NewFloat(math.Log2(nF)))

		// sigma prime determines the required size of q
		sigmaPrime := new(big.Float).Quo(sigma, kF)
		sigmaPrime.Quo(sigmaPrime, big.NewFloat(math.Pow(nF, 6)*
			math.Pow(float64(nBitsQ), 2)*math.Pow(math.Sqrt(math.Log2(nF)), 5)))

		boundForQ := new(big.Float).Quo(big.NewFloat(math.Sqrt(math.Log2(nF))), sigmaPrime)
		nBitsQ = boundForQ.MantExp(nil) + 1

		// the fixed point is reached when the assumed bit length
		// covers the demanded one
		if nBitsQ < i {
			break
		}
		i = nBitsQ
	}

	q, err := rand.Prime(rand.Reader, nBitsQ)
	if err != nil {
		return nil, errors.Wrap(err, "cannot generate public parameters")
	}

	m := int(1.01 * nF * float64(nBitsQ))

	sigmaQ := new(big.Float).Mul(sigma, new(big.Float).SetInt(q))
	lSigmaQF := new(big.Float).Quo(sigmaQ, sample.SigmaCDT)
	lSigmaQ, _ := lSigmaQF.Int(nil)
	sigmaQ.Mul(sample.SigmaCDT, lSigmaQF)

	A, err := data.NewRandomMatrix(m, n, sample.NewUniform(q))
	if err != nil {
		return nil, errors.Wrap(err, "cannot generate public parameters")
	}

	return &LWE{
		Params: &LWEParams{
			L:       l,
			N:       n,
			M:       m,
			BoundX:  boundX,
			BoundY:  boundY,
			K:       K,
			Q:       q,
			SigmaQ:  sigmaQ,
			LSigmaQ: lSigmaQ,
			Sigma1:  sigma1,
			LSigma1: lSigma1,
			Sigma2:  sigma2,
			LSigma2: lSigma2,
			A:       A,
		},
	}, nil
}

// GenerateSecretKey generates a master secret key, an l x m matrix
// whose left half is sampled with deviation Sigma1 and right half with
// deviation Sigma2, the right half carrying an identity offset.
func (s *LWE) GenerateSecretKey() (data.Matrix, error) {
	sampler1 := sample.NewNormalDoubleConstant(s.Params.LSigma1)
	sampler2 := sample.NewNormalDoubleConstant(s.Params.LSigma2)

	Z := make(data.Matrix, s.Params.L)
	half := s.Params.M / 2
	for i := range Z {
		Z[i] = make(data.Vector, s.Params.M)
		for j := 0; j < s.Params.M; j++ {
			var val *big.Int
			var err error
			if j < half {
				val, err = sampler1.Sample()
			} else {
				val, err = sampler2.Sample()
				if err == nil && j-half == i {
					val.Add(val, big.NewInt(1))
				}
			}
			if err != nil {
				return nil, err
			}
			Z[i][j] = val
		}
	}

	return Z, nil
}

// GeneratePublicKey derives the master public key U = Z * A mod q.
func (s *LWE) GeneratePublicKey(Z data.Matrix) (data.Matrix, error) {
	if !Z.CheckDims(s.Params.L, s.Params.M) {
		return nil, internal.ErrMalformedSecKey
	}

	U, _ := Z.Mul(s.Params.A)

	return U.Mod(s.Params.Q), nil
}

// DeriveKey derives the functional key Z^T * y mod q for inner
// products with y.
func (s *LWE) DeriveKey(y data.Vector, Z data.Matrix) (data.Vector, error) {
	if err := y.CheckBound(s.Params.BoundY); err != nil {
		return nil, err
	}
	if !Z.CheckDims(s.Params.L, s.Params.M) {
		return nil, internal.ErrMalformedSecKey
	}

	zY, err := Z.Transpose().MulVec(y)
	if err != nil {
		return nil, internal.ErrMalformedInput
	}

	return zY.Mod(s.Params.Q), nil
}

// Encrypt encrypts x under the public key U: with r uniform and noise
// vectors e0, e1 it outputs (A r + e0, U r + e1 + (q/K) x) mod q.
func (s *LWE) Encrypt(x data.Vector, U data.Matrix) (data.Vector, error) {
	if err := x.CheckBound(s.Params.BoundX); err != nil {
		return nil, err
	}
	if !U.CheckDims(s.Params.L, s.Params.N) {
		return nil, internal.ErrMalformedPubKey
	}
	if len(x) != s.Params.L {
		return nil, internal.ErrMalformedInput
	}

	r, err := data.NewRandomVector(s.Params.N, sample.NewUniform(s.Params.Q))
	if err != nil {
		return nil, errors.Wrap(err, "error in encrypt")
	}

	sampler := sample.NewNormalDoubleConstant(s.Params.LSigmaQ)
	e0, err := data.NewRandomVector(s.Params.M, sampler)
	if err != nil {
		return nil, errors.Wrap(err, "error in encrypt")
	}
	e1, err := data.NewRandomVector(s.Params.L, sampler)
	if err != nil {
		return nil, errors.Wrap(err, "error in encrypt")
	}

	c0, _ := s.Params.A.MulVec(r)
	c0 = c0.Add(e0).Mod(s.Params.Q)

	qDivK := new(big.Int).Div(s.Params.Q, s.Params.K)
	c1, _ := U.MulVec(r)
	c1 = c1.Add(e1).Add(x.MulScalar(qDivK)).Mod(s.Params.Q)

	return append(c0, c1...), nil
}

// Decrypt recovers the inner product <x, y> from a ciphertext of x and
// a functional key for y: the value <y, c1> - <zY, c0> mod q is lifted
// to (-q/2, q/2] and rounded by K/q.
func (s *LWE) Decrypt(cipher, zY, y data.Vector) (*big.Int, error) {
	if err := y.CheckBound(s.Params.BoundY); err != nil {
		return nil, err
	}
	if len(zY) != s.Params.M {
		return nil, internal.ErrMalformedDecKey
	}
	if len(y) != s.Params.L {
		return nil, internal.ErrMalformedInput
	}
	if len(cipher) != s.Params.M+s.Params.L {
		return nil, internal.ErrMalformedCipher
	}

	c0 := cipher[:s.Params.M]
	c1 := cipher[s.Params.M:]

	yDotC1, _ := y.Dot(c1)
	zYDotC0, _ := zY.Dot(c0)

	mu1 := new(big.Int).Sub(yDotC1, zYDotC0)
	mu1.Mod(mu1, s.Params.Q)
	if mu1.Cmp(new(big.Int).Rsh(s.Params.Q, 1)) > 0 {
		mu1.Sub(mu1, s.Params.Q)
	}

	qDivK := new(big.Int).Div(s.Params.Q, s.Params.K)
	qDiv2K := new(big.Int).Div(s.Params.Q, new(big.Int).Lsh(s.Params.K, 1))

	mu := new(big.Int).Add(mu1, qDiv2K)

	return mu.Div(mu, qDivK), nil
}
