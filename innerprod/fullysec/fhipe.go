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
	"github.com/arx-crypto/arxfe/internal/dlog"
	"github.com/arx-crypto/arxfe/sample"
	"github.com/fentec-project/bn256"
)

// FHIPEParams holds configuration parameters for a FHIPE scheme
// instance: the vector length L and the bounds on the coordinates of
// the encrypted and key vectors.
type FHIPEParams struct {
	L      int
	BoundX *big.Int
	BoundY *big.Int
}

// FHIPE is a symmetric-key function-hiding inner product scheme based
// on Kim, Lewi, Mandal, Montgomery, Raykova and Wu: "Function-Hiding
// Inner Product Encryption is Practical". Functional keys reveal
// nothing about their vector y beyond the inner products they decrypt.
type FHIPE struct {
	Params *FHIPEParams
}

// NewFHIPE configures a new FHIPE scheme for vectors of length l with
// the given coordinate bounds. It returns an error when
// 2 * l * boundX * boundY exceeds the BN256 group order.
func NewFHIPE(l int, boundX, boundY *big.Int) (*FHIPE, error) {
	prod := new(big.Int).Mul(boundX, boundY)
	prod.Mul(prod, big.NewInt(int64(2*l)))
	if prod.Cmp(bn256.Order) > 0 {
		return nil, fmt.Errorf("2 * l * boundX * boundY should be smaller than group order")
	}

	return &FHIPE{
		Params: &FHIPEParams{
			L:      l,
			BoundX: boundX,
			BoundY: boundY,
		},
	}, nil
}

// NewFHIPEFromParams reconstructs a FHIPE scheme from the parameters
// of an existing instance.
func NewFHIPEFromParams(params *FHIPEParams) *FHIPE {
	return &FHIPE{Params: params}
}

// FHIPESecKey is the master secret key of the FHIPE scheme: random
// generators of G1 and G2 and a random matrix B with its dual
// BStar = det(B) * (B^-1)^T, so that B * BStar^T = det(B) * I.
type FHIPESecKey struct {
	G1    *bn256.G1
	G2    *bn256.G2
	B     data.Matrix
	BStar data.Matrix
}

// GenerateMasterKey generates a master secret key; the scheme is
// symmetric and has no public key.
func (d *FHIPE) GenerateMasterKey() (*FHIPESecKey, error) {
	_, g1, err := bn256.RandomG1(rand.Reader)
	if err != nil {
		return nil, err
	}
	_, g2, err := bn256.RandomG2(rand.Reader)
	if err != nil {
		return nil, err
	}

	b, err := data.NewRandomMatrix(d.Params.L, d.Params.L, sample.NewUniform(bn256.Order))
	if err != nil {
		return nil, err
	}

	bInv, det, err := b.InverseModGauss(bn256.Order)
	if err != nil {
		return nil, err
	}
	bStar := bInv.Transpose().MulScalar(det).Mod(bn256.Order)

	return &FHIPESecKey{G1: g1, G2: g2, B: b, BStar: bStar}, nil
}

// FHIPEDerivedKey is a functional key of the FHIPE scheme,
// (g1^{alpha det(B)}, g1^{alpha B y}).
type FHIPEDerivedKey struct {
	K1 *bn256.G1
	K2 data.VectorG1
}

// DeriveKey derives the functional key for inner products with y,
// blinded by a fresh random scalar alpha.
func (d *FHIPE) DeriveKey(y data.Vector, masterKey *FHIPESecKey) (*FHIPEDerivedKey, error) {
	if err := y.CheckBound(d.Params.BoundY); err != nil {
		return nil, err
	}
	if len(y) != d.Params.L {
		return nil, fmt.Errorf("vector dimension error")
	}

	alpha, err := sample.NewUniform(bn256.Order).Sample()
	if err != nil {
		return nil, err
	}

	det, err := masterKey.B.DeterminantGauss(bn256.Order)
	if err != nil {
		return nil, err
	}

	k1 := new(bn256.G1).ScalarMult(masterKey.G1, det)
	k1.ScalarMult(k1, alpha)

	alphaBY, err := masterKey.B.MulVec(y)
	if err != nil {
		return nil, err
	}
	alphaBY = alphaBY.MulScalar(alpha).Mod(bn256.Order)

	g1Vec := make(data.VectorG1, d.Params.L)
	for i := range g1Vec {
		g1Vec[i] = new(bn256.G1).Set(masterKey.G1)
	}

	return &FHIPEDerivedKey{K1: k1, K2: alphaBY.MulVecG1(g1Vec)}, nil
}

// FHIPECipher is a ciphertext of the FHIPE scheme,
// (g2^beta, g2^{beta BStar x}).
type FHIPECipher struct {
	C1 *bn256.G2
	C2 data.VectorG2
}

// Encrypt encrypts x under the master secret key, blinded by a fresh
// random scalar beta.
func (d *FHIPE) Encrypt(x data.Vector, masterKey *FHIPESecKey) (*FHIPECipher, error) {
	if err := x.CheckBound(d.Params.BoundX); err != nil {
		return nil, err
	}
	if len(x) != d.Params.L {
		return nil, fmt.Errorf("vector dimension error")
	}

	beta, err := sample.NewUniform(bn256.Order).Sample()
	if err != nil {
		return nil, err
	}

	c1 := new(bn256.G2).ScalarMult(masterKey.G2, beta)

	betaBStarX, err := masterKey.BStar.MulVec(x)
	if err != nil {
		return nil, err
	}
	betaBStarX = betaBStarX.MulScalar(beta).Mod(bn256.Order)

	g2Vec := make(data.VectorG2, d.Params.L)
	for i := range g2Vec {
		g2Vec[i] = new(bn256.G2).Set(masterKey.G2)
	}

	return &FHIPECipher{C1: c1, C2: betaBStarX.MulVecG2(g2Vec)}, nil
}

// Decrypt recovers the inner product <x, y> from a ciphertext and a
// functional key: pairing the components gives
// e(g1, g2)^{alpha beta det(B) <x, y>}, decoded by a discrete log
// search relative to the pairing of the blinding components.
func (d *FHIPE) Decrypt(cipher *FHIPECipher, key *FHIPEDerivedKey) (*big.Int, error) {
	if len(cipher.C2) != d.Params.L || len(key.K2) != d.Params.L {
		return nil, fmt.Errorf("key or cipher length error")
	}

	d1 := bn256.Pair(key.K1, cipher.C1)
	d2 := data.PairVectors(key.K2, cipher.C2)

	bound := new(big.Int).Mul(d.Params.BoundX, d.Params.BoundY)
	bound.Mul(bound, big.NewInt(int64(d.Params.L)))

	return dlog.NewCalc().InBN256().WithNeg().WithBound(bound).BabyStepGiantStep(d2, d1)
}
