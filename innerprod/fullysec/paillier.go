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
	"fmt"
	"math/big"

	"github.com/arx-crypto/arxfe/data"
	"github.com/arx-crypto/arxfe/internal"
	"github.com/arx-crypto/arxfe/internal/keygen"
	"github.com/arx-crypto/arxfe/sample"
	"github.com/pkg/errors"
)

// PaillierParams holds the public parameters of the Paillier inner
// product scheme.
type PaillierParams struct {
	// length of the inner product vectors
	L int
	// modulus, a product of two safe primes
	N       *big.Int
	NSquare *big.Int

	// bounds on the coordinates of x (plaintext) and y (key) vectors
	BoundX *big.Int
	BoundY *big.Int

	// standard deviation for sampling the secret key and its
	// precomputed multiple of sample.SigmaCDT
	Sigma  *big.Float
	LSigma *big.Int

	// security parameter
	Lambda int

	// generator of the subgroup of 2n-th residues of Z_{n^2}^*
	G *big.Int
}

// Paillier is an inner product scheme built on the Paillier variant of
// Agrawal, Libert and Stehle: "Fully secure functional encryption for
// inner products, from standard assumptions". Decryption recovers the
// exact inner product without any discrete logarithm search.
type Paillier struct {
	Params *PaillierParams
}

// NewPaillier configures a new Paillier scheme for vectors of length l
// with the given coordinate bounds. Two safe primes of bitLen bits
// make up the modulus; bitLen should be chosen so that factoring their
// product takes at least 2^lambda operations. An error is returned
// when prime generation fails or when the bounds are too large for the
// generated modulus.
func NewPaillier(l, lambda, bitLen int, boundX, boundY *big.Int) (*Paillier, error) {
	p, err := keygen.GetSafePrime(bitLen)
	if err != nil {
		return nil, errors.Wrap(err, "parameters generation failed")
	}
	q, err := keygen.GetSafePrime(bitLen)
	if err != nil {
		return nil, errors.Wrap(err, "parameters generation failed")
	}

	n := new(big.Int).Mul(p, q)
	nSquare := new(big.Int).Mul(n, n)

	// n must dominate 2 * l * bound^2 for both bounds
	xSquareL := new(big.Int).Mul(boundX, boundX)
	xSquareL.Mul(xSquareL, big.NewInt(int64(2*l)))
	if n.Cmp(xSquareL) <= 0 {
		return nil, fmt.Errorf("parameters generation failed, boundX and l too big for bitLen")
	}
	ySquareL := new(big.Int).Mul(boundY, boundY)
	ySquareL.Mul(ySquareL, big.NewInt(int64(2*l)))
	if n.Cmp(ySquareL) <= 0 {
		return nil, fmt.Errorf("parameters generation failed, boundY and l too big for bitLen")
	}

	// a random element raised to 2n generates the 2n-th residues
	gPrime, err := rand.Int(rand.Reader, nSquare)
	if err != nil {
		return nil, err
	}
	g := new(big.Int).Exp(gPrime, n, nSquare)
	g.Exp(g, big.NewInt(2), nSquare)

	if new(big.Int).ModInverse(g, nSquare) == nil {
		return nil, fmt.Errorf("parameters generation failed, generator g is not invertible")
	}

	// sigma = sqrt(lambda * n^5) + 2, rounded up to a multiple of
	// sample.SigmaCDT so NormalDoubleConstant can sample with it
	sigma := new(big.Float).SetInt(new(big.Int).Exp(n, big.NewInt(5), nil))
	sigma.Mul(sigma, big.NewFloat(float64(lambda)))
	sigma.Sqrt(sigma)
	sigma.Add(sigma, big.NewFloat(2))

	lSigmaF := new(big.Float).Quo(sigma, sample.SigmaCDT)
	lSigma, _ := lSigmaF.Int(nil)
	lSigma.Add(lSigma, big.NewInt(1))
	sigma.Mul(sample.SigmaCDT, new(big.Float).SetInt(lSigma))

	return &Paillier{
		Params: &PaillierParams{
			L:       l,
			N:       n,
			NSquare: nSquare,
			BoundX:  boundX,
			BoundY:  boundY,
			Sigma:   sigma,
			LSigma:  lSigma,
			Lambda:  lambda,
			G:       g,
		},
	}, nil
}

// NewPaillierFromParams reconstructs a Paillier scheme from the
// parameters of an existing instance.
func NewPaillierFromParams(params *PaillierParams) *Paillier {
	return &Paillier{Params: params}
}

// GenerateMasterKeys generates a master secret key, a vector of
// discrete Gaussian values of deviation Sigma, and the master public
// key (g^msk_i)_i in Z_{n^2}.
func (s *Paillier) GenerateMasterKeys() (data.Vector, data.Vector, error) {
	sampler := sample.NewNormalDoubleConstant(s.Params.LSigma)

	secKey, err := data.NewRandomVector(s.Params.L, sampler)
	if err != nil {
		return nil, nil, err
	}

	pubKey := secKey.Apply(func(x *big.Int) *big.Int {
		return internal.ModExp(s.Params.G, x, s.Params.NSquare)
	})

	return secKey, pubKey, nil
}

// DeriveKey derives the functional key <msk, y>, over the integers.
func (s *Paillier) DeriveKey(masterSecKey, y data.Vector) (*big.Int, error) {
	// a nil bound admits any y; the multi-client front end relies on
	// this after widening the message space
	if s.Params.BoundY != nil {
		if err := y.CheckBound(s.Params.BoundY); err != nil {
			return nil, err
		}
	}

	return masterSecKey.Dot(y)
}

// Encrypt encrypts x under the master public key. The ciphertext is
// (g^r, ((1 + x_i n) * mpk_i^r)_i) in Z_{n^2}.
func (s *Paillier) Encrypt(x, masterPubKey data.Vector) (data.Vector, error) {
	if s.Params.BoundX != nil {
		if err := x.CheckBound(s.Params.BoundX); err != nil {
			return nil, err
		}
	}
	if len(x) != s.Params.L || len(masterPubKey) != s.Params.L {
		return nil, internal.ErrMalformedInput
	}

	nOver4 := new(big.Int).Quo(s.Params.N, big.NewInt(4))
	r, err := rand.Int(rand.Reader, nOver4)
	if err != nil {
		return nil, err
	}

	cipher := make(data.Vector, s.Params.L+1)
	cipher[0] = new(big.Int).Exp(s.Params.G, r, s.Params.NSquare)
	for i, xi := range x {
		t := new(big.Int).Mul(xi, s.Params.N)
		t.Add(t, big.NewInt(1))
		t.Mul(t, new(big.Int).Exp(masterPubKey[i], r, s.Params.NSquare))
		cipher[i+1] = t.Mod(t, s.Params.NSquare)
	}

	return cipher, nil
}

// Decrypt recovers the inner product <x, y> from a ciphertext of x and
// a functional key for y: the value (prod_i c_i^y_i) * c_0^-key equals
// 1 + <x, y> n in Z_{n^2}, so subtracting 1 and dividing by n yields
// the result, normalized to (-n/2, n/2).
func (s *Paillier) Decrypt(cipher data.Vector, key *big.Int, y data.Vector) (*big.Int, error) {
	if s.Params.BoundY != nil {
		if err := y.CheckBound(s.Params.BoundY); err != nil {
			return nil, err
		}
	}
	if len(cipher) != s.Params.L+1 {
		return nil, internal.ErrMalformedCipher
	}

	cX := internal.ModExp(cipher[0], new(big.Int).Neg(key), s.Params.NSquare)
	for i, ct := range cipher[1:] {
		cX.Mul(cX, internal.ModExp(ct, y[i], s.Params.NSquare))
		cX.Mod(cX, s.Params.NSquare)
	}

	cX.Sub(cX, big.NewInt(1))
	cX.Mod(cX, s.Params.NSquare)
	res := new(big.Int).Quo(cX, s.Params.N)

	nHalf := new(big.Int).Rsh(s.Params.N, 1)
	if res.Cmp(nHalf) > 0 {
		res.Sub(res, s.Params.N)
	}

	return res, nil
}
