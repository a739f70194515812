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
	"math/big"

	"github.com/arx-crypto/arxfe/data"
	"github.com/arx-crypto/arxfe/internal/dlog"
	"github.com/arx-crypto/arxfe/sample"
	"github.com/fentec-project/bn256"
)

// FHMultiIPEParams holds configuration parameters for a FHMultiIPE
// scheme instance: the security level (the k of the underlying k-Lin
// assumption), the number of clients, the per-client vector length,
// and the bounds on the coordinates of encrypted and key vectors.
type FHMultiIPEParams struct {
	SecLevel   int
	NumClients int
	VecLen     int
	BoundX     *big.Int
	BoundY     *big.Int
}

// FHMultiIPE is a function-hiding multi-input inner product scheme
// based on Datta, Okamoto and Tomida: "Full-Hiding (Unbounded)
// Multi-Input Inner Product Functional Encryption from the k-Linear
// Assumption". Clients encrypt vectors x_1, ..., x_m; a functional key
// derived from y_1, ..., y_m decrypts the sum of inner products
// <x_1, y_1> + ... + <x_m, y_m> revealing neither side. The master
// secret key here holds the dual orthonormal bases B, BStar as integer
// matrices rather than as lifted group elements, trading curve
// operations for matrix arithmetic.
type FHMultiIPE struct {
	Params *FHMultiIPEParams
}

// FHMultiIPESecKey is the master secret key of the FHMultiIPE scheme:
// per-client portions of the dual bases.
type FHMultiIPESecKey struct {
	BHat     []data.Matrix
	BStarHat []data.Matrix
}

// NewFHMultiIPE configures a new FHMultiIPE scheme; see
// FHMultiIPEParams for the meaning of the arguments.
func NewFHMultiIPE(secLevel, numClients, vecLen int, boundX, boundY *big.Int) *FHMultiIPE {
	return &FHMultiIPE{Params: &FHMultiIPEParams{
		SecLevel:   secLevel,
		NumClients: numClients,
		VecLen:     vecLen,
		BoundX:     boundX,
		BoundY:     boundY,
	}}
}

// NewFHMultiIPEFromParams reconstructs a FHMultiIPE scheme from the
// parameters of an existing instance.
func NewFHMultiIPEFromParams(params *FHMultiIPEParams) *FHMultiIPE {
	return &FHMultiIPE{Params: params}
}

// GenerateKeys generates the master secret key together with the
// public key g_T^mu needed for decryption.
func (f FHMultiIPE) GenerateKeys() (*FHMultiIPESecKey, *bn256.GT, error) {
	mu, err := sample.NewUniformRange(big.NewInt(1), bn256.Order).Sample()
	if err != nil {
		return nil, nil, err
	}
	gTMu := new(bn256.GT).ScalarBaseMult(mu)

	dim := 2*f.Params.VecLen + 2*f.Params.SecLevel + 1

	B := make([]data.Matrix, f.Params.NumClients)
	BStar := make([]data.Matrix, f.Params.NumClients)
	for i := range B {
		B[i], BStar[i], err = randomOB(dim, mu)
		if err != nil {
			return nil, nil, err
		}
	}

	// only the rows actually used by key derivation and encryption are
	// retained; the remaining dimensions exist for the security proof
	vl, sl := f.Params.VecLen, f.Params.SecLevel
	BHat := make([]data.Matrix, f.Params.NumClients)
	BStarHat := make([]data.Matrix, f.Params.NumClients)
	for i := range BHat {
		BHat[i] = make(data.Matrix, vl+sl+1)
		BStarHat[i] = make(data.Matrix, vl+sl)
		for j := 0; j < vl+sl+1; j++ {
			switch {
			case j < vl:
				BHat[i][j] = B[i][j]
				BStarHat[i][j] = BStar[i][j]
			case j == vl:
				BHat[i][j] = B[i][j+vl]
				BStarHat[i][j] = BStar[i][j+vl]
			case j < vl+sl:
				BHat[i][j] = B[i][j-1+vl+sl]
				BStarHat[i][j] = BStar[i][j+vl]
			default:
				BHat[i][j] = B[i][j-1+vl+sl]
			}
		}
	}

	return &FHMultiIPESecKey{BHat: BHat, BStarHat: BStarHat}, gTMu, nil
}

// randomOB samples a random invertible l x l matrix B and its dual
// BStar = mu * (B^-1)^T, so that B * BStar^T = mu * I.
func randomOB(l int, mu *big.Int) (data.Matrix, data.Matrix, error) {
	B, err := data.NewRandomMatrix(l, l, sample.NewUniform(bn256.Order))
	if err != nil {
		return nil, nil, err
	}

	BInv, _, err := B.InverseModGauss(bn256.Order)
	if err != nil {
		return nil, nil, err
	}
	BStar := BInv.Transpose().MulScalar(mu).Mod(bn256.Order)

	return B, BStar, nil
}

// DeriveKey derives the functional key for the matrix y whose rows are
// the per-client vectors y_1, ..., y_m. The per-client keys embed
// shares of zero so that only the full combination decrypts.
func (f FHMultiIPE) DeriveKey(y data.Matrix, secKey *FHMultiIPESecKey) (data.MatrixG2, error) {
	if err := y.CheckBound(f.Params.BoundY); err != nil {
		return nil, err
	}

	gamma, err := data.NewRandomMatrix(f.Params.SecLevel, f.Params.NumClients,
		sample.NewUniform(bn256.Order))
	if err != nil {
		return nil, err
	}

	// force the first row of gamma to sum to zero across clients
	sum := new(big.Int)
	for _, g := range gamma[0][:f.Params.NumClients-1] {
		sum.Add(sum, g)
	}
	gamma[0][f.Params.NumClients-1] = sum.Neg(sum).Mod(sum, bn256.Order)

	vl, sl := f.Params.VecLen, f.Params.SecLevel
	dim := 2*vl + 2*sl + 1

	keyMat := make(data.Matrix, f.Params.NumClients)
	for i := range keyMat {
		row := data.NewConstantVector(dim, big.NewInt(0))
		for j := 0; j < vl+sl; j++ {
			var s *big.Int
			if j < vl {
				s = y[i][j]
			} else {
				s = gamma[j-vl][i]
			}
			row = row.Add(secKey.BStarHat[i][j].MulScalar(s)).Mod(bn256.Order)
		}
		keyMat[i] = row
	}

	return keyMat.MulG2(), nil
}

// Encrypt encrypts the client's vector x with the client's portion of
// the master secret key, returning the lifted combination in G1.
func (f FHMultiIPE) Encrypt(x data.Vector, partSecKey data.Matrix) (data.VectorG1, error) {
	if err := x.CheckBound(f.Params.BoundX); err != nil {
		return nil, err
	}

	phi, err := data.NewRandomVector(f.Params.SecLevel, sample.NewUniform(bn256.Order))
	if err != nil {
		return nil, err
	}

	vl, sl := f.Params.VecLen, f.Params.SecLevel
	dim := 2*vl + 2*sl + 1

	vec := data.NewConstantVector(dim, big.NewInt(0))
	for j := 0; j < vl+sl+1; j++ {
		var s *big.Int
		switch {
		case j < vl:
			s = x[j]
		case j == vl:
			s = big.NewInt(1)
		default:
			s = phi[j-vl-1]
		}
		vec = vec.Add(partSecKey[j].MulScalar(s)).Mod(bn256.Order)
	}

	return vec.MulG1(), nil
}

// Decrypt pairs the clients' ciphertexts with the functional key and
// decodes the sum of inner products from the target group relative to
// the public key g_T^mu.
func (f *FHMultiIPE) Decrypt(cipher data.MatrixG1, key data.MatrixG2, pubKey *bn256.GT) (*big.Int, error) {
	sum := new(bn256.GT).ScalarBaseMult(big.NewInt(0))
	for i := 0; i < f.Params.NumClients; i++ {
		sum.Add(sum, data.PairVectors(cipher[i], key[i]))
	}

	bound := new(big.Int).Mul(f.Params.BoundX, f.Params.BoundY)
	bound.Mul(bound, big.NewInt(int64(f.Params.NumClients*f.Params.VecLen)))

	return dlog.NewCalc().InBN256().WithNeg().WithBound(bound).BabyStepGiantStep(sum, pubKey)
}
