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

// Package quadratic contains functional encryption schemes for
// quadratic polynomials: a holder of a functional key derived from a
// matrix F learns the value x^T * F * y for encrypted vectors x and y
// and nothing else about them.
package quadratic

import (
	"math/big"

	"github.com/arx-crypto/arxfe/data"
	"github.com/arx-crypto/arxfe/internal/dlog"
	"github.com/arx-crypto/arxfe/sample"
	"github.com/fentec-project/bn256"
)

// SGP is a functional encryption scheme for quadratic multi-variate
// polynomials based on Dufour Sans, Gay and Pointcheval: "Reading in
// the Dark: Classifying Encrypted Digits with Functional Encryption"
// (https://eprint.iacr.org/2018/206.pdf), built on bilinear pairings
// and secure against adaptive chosen-plaintext attacks. It is a
// secret-key scheme: encrypting the vectors x and y requires the
// master key, and the functional key for a matrix F decrypts
// x^T * F * y.
type SGP struct {
	// length of the vectors x and y; F is N x N
	N int
	// modulus for ciphertext and keys
	mod *big.Int
	// bound on the entries of x, y and F
	Bound *big.Int

	gCalc    *dlog.CalcBN256
	gInvCalc *dlog.CalcBN256
}

// NewSGP configures a new SGP scheme for vectors of length n with
// entries bounded by b.
func NewSGP(n int, b *big.Int) *SGP {
	return &SGP{
		N:        n,
		mod:      bn256.Order,
		Bound:    b,
		gCalc:    dlog.NewCalc().InBN256(),
		gInvCalc: dlog.NewCalc().InBN256(),
	}
}

// SGPSecKey is the master secret key of the SGP scheme, a pair of
// random vectors.
type SGPSecKey struct {
	S data.Vector
	T data.Vector
}

// NewSGPSecKey wraps the vectors s and t into an SGPSecKey.
func NewSGPSecKey(s, t data.Vector) *SGPSecKey {
	return &SGPSecKey{S: s, T: t}
}

// GenerateMasterKey generates a master secret key.
func (q *SGP) GenerateMasterKey() (*SGPSecKey, error) {
	sampler := sample.NewUniform(q.mod)

	s, err := data.NewRandomVector(q.N, sampler)
	if err != nil {
		return nil, err
	}
	t, err := data.NewRandomVector(q.N, sampler)
	if err != nil {
		return nil, err
	}

	return NewSGPSecKey(s, t), nil
}

// SGPCipher is a ciphertext of the SGP scheme: a G1 tag carrying the
// encryption randomness and the blinded encodings of x in G1 and of y
// in G2.
type SGPCipher struct {
	G1MulGamma *bn256.G1
	AMulG1     []data.VectorG1
	BMulG2     []data.VectorG2
}

// NewSGPCipher assembles an SGPCipher from its components.
func NewSGPCipher(g1MulGamma *bn256.G1, aMulG1 []data.VectorG1,
	bMulG2 []data.VectorG2) *SGPCipher {
	return &SGPCipher{
		G1MulGamma: g1MulGamma,
		AMulG1:     aMulG1,
		BMulG2:     bMulG2,
	}
}

// Encrypt encrypts the vectors x and y under the master secret key. A
// fresh 2 x 2 blinding matrix W ties the two encodings together: the
// coordinates of x enter through W^-T, those of y through W, so that
// pairing cancels W.
func (q *SGP) Encrypt(x, y data.Vector, msk *SGPSecKey) (*SGPCipher, error) {
	if err := x.CheckBound(q.Bound); err != nil {
		return nil, err
	}
	if err := y.CheckBound(q.Bound); err != nil {
		return nil, err
	}

	sampler := sample.NewUniform(q.mod)
	gamma, err := sampler.Sample()
	if err != nil {
		return nil, err
	}

	W, err := data.NewRandomMatrix(2, 2, sampler)
	if err != nil {
		return nil, err
	}
	WInv, err := W.InverseMod(q.mod)
	if err != nil {
		return nil, err
	}
	WInvT := WInv.Transpose()

	a := make([]data.Vector, q.N)
	b := make([]data.Vector, q.N)
	for i := 0; i < q.N; i++ {
		// a_i = W^-T * (x_i, gamma * s_i)
		gs := new(big.Int).Mul(gamma, msk.S[i])
		gs.Mod(gs, q.mod)
		a[i], err = WInvT.MulVec(data.NewVector([]*big.Int{x[i], gs}))
		if err != nil {
			return nil, err
		}

		// b_i = W * (y_i, -t_i)
		tNeg := new(big.Int).Sub(q.mod, msk.T[i])
		b[i], err = W.MulVec(data.NewVector([]*big.Int{y[i], tNeg}))
		if err != nil {
			return nil, err
		}
	}

	aMulG1 := make([]data.VectorG1, q.N)
	bMulG2 := make([]data.VectorG2, q.N)
	for i := range a {
		aMulG1[i] = a[i].MulG1()
		bMulG2[i] = b[i].MulG2()
	}

	return NewSGPCipher(new(bn256.G1).ScalarBaseMult(gamma), aMulG1, bMulG2), nil
}

// DeriveKey derives the functional key g2^{s^T F t} for the matrix F.
func (q *SGP) DeriveKey(msk *SGPSecKey, F data.Matrix) (*bn256.G2, error) {
	if err := F.CheckBound(q.Bound); err != nil {
		return nil, err
	}

	v, err := F.MulXMatY(msk.S, msk.T)
	if err != nil {
		return nil, err
	}

	pow := new(big.Int).Set(v)
	e := new(bn256.G2).ScalarBaseMult(big.NewInt(1))
	if pow.Sign() < 0 {
		pow.Neg(pow)
		e.Neg(e)
	}

	return new(bn256.G2).ScalarMult(e, pow), nil
}

// Decrypt recovers x^T * F * y from a ciphertext and a functional key
// for F: the pairings of the encoding pairs are aggregated with the
// entries of F as weights, the key pairing removes the randomness, and
// the result is decoded within the bound N^2 * Bound^3.
func (q *SGP) Decrypt(c *SGPCipher, key *bn256.G2, F data.Matrix) (*big.Int, error) {
	if err := F.CheckBound(q.Bound); err != nil {
		return nil, err
	}

	prod := bn256.Pair(c.G1MulGamma, key)
	for i, row := range F {
		for j, fij := range row {
			if fij.Sign() == 0 {
				continue
			}

			e := new(bn256.GT).Add(
				bn256.Pair(c.AMulG1[i][0], c.BMulG2[j][0]),
				bn256.Pair(c.AMulG1[i][1], c.BMulG2[j][1]))

			pow := new(big.Int).Set(fij)
			if pow.Sign() < 0 {
				pow.Neg(pow)
				e.Neg(e)
			}
			prod.Add(prod, new(bn256.GT).ScalarMult(e, pow))
		}
	}

	g := bn256.Pair(new(bn256.G1).ScalarBaseMult(big.NewInt(1)),
		new(bn256.G2).ScalarBaseMult(big.NewInt(1)))

	bound := new(big.Int).Exp(q.Bound, big.NewInt(3), nil)
	bound.Mul(bound, big.NewInt(int64(q.N*q.N)))

	return q.gCalc.WithBound(bound).WithNeg().BabyStepGiantStep(prod, g)
}
