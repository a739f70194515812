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
	"fmt"
	"math/big"

	"github.com/arx-crypto/arxfe/data"
	"github.com/arx-crypto/arxfe/internal/dlog"
	"github.com/arx-crypto/arxfe/sample"
	"github.com/fentec-project/bn256"
)

// PartFHIPEParams holds configuration parameters for a PartFHIPE
// scheme instance: the vector length L and an optional bound on the
// coordinates of input vectors; a nil bound leaves inputs unchecked.
type PartFHIPEParams struct {
	L     int
	Bound *big.Int
}

// PartFHIPE is a partially function hiding inner product scheme based
// on Romain Gay: "A New Paradigm for Public-Key Functional Encryption
// for Degree-2 Polynomials". It is a public-key scheme whose
// functional keys do not reveal their vector y; the price is that
// public-key encryption is limited to vectors from a chosen subspace
// (the column span of a matrix M), while the holder of the secret key
// can encrypt arbitrary vectors.
type PartFHIPE struct {
	Params *PartFHIPEParams
}

// NewPartFHIPE configures a new PartFHIPE scheme for vectors of length
// l with coordinates bounded by bound (nil for unbounded). It returns
// an error when 2 * l * bound^2 exceeds the BN256 group order.
func NewPartFHIPE(l int, bound *big.Int) (*PartFHIPE, error) {
	var b *big.Int
	if bound != nil {
		upper := new(big.Int).Mul(bound, bound)
		upper.Mul(upper, big.NewInt(int64(2*l)))
		if upper.Cmp(bn256.Order) > 0 {
			return nil, fmt.Errorf("bound and l too big for the group")
		}
		b = new(big.Int).Set(bound)
	}

	return &PartFHIPE{
		Params: &PartFHIPEParams{L: l, Bound: b},
	}, nil
}

// NewPartFHIPEFromParams reconstructs a PartFHIPE scheme from the
// parameters of an existing instance.
func NewPartFHIPEFromParams(params *PartFHIPEParams) *PartFHIPE {
	return &PartFHIPE{Params: params}
}

// PartFHIPESecKey is the master secret key of the PartFHIPE scheme.
type PartFHIPESecKey struct {
	B data.Vector
	V data.Matrix
	U data.Matrix
}

// PartFHIPEPubKey is the public key of the PartFHIPE scheme; M spans
// the subspace of vectors encryptable without the secret key.
type PartFHIPEPubKey struct {
	A   data.VectorG1
	Ua  data.VectorG1
	VtM data.MatrixG1
	M   data.Matrix
	MG1 data.MatrixG1
}

// GenerateKeys generates a key pair for the scheme. The matrix M fixes
// the subspace of publicly encryptable vectors: the public key allows
// encrypting any vector in the column span of M.
func (d *PartFHIPE) GenerateKeys(M data.Matrix) (*PartFHIPEPubKey, *PartFHIPESecKey, error) {
	if d.Params.L != M.Rows() {
		return nil, nil, fmt.Errorf("dimensions of the given matrix do not match dimensions of the scheme")
	}

	sampler := sample.NewUniform(bn256.Order)

	x, err := sampler.Sample()
	if err != nil {
		return nil, nil, err
	}
	aVec := data.Vector{big.NewInt(1), x}

	x, err = sampler.Sample()
	if err != nil {
		return nil, nil, err
	}
	b := data.Vector{big.NewInt(1), x}

	U, err := data.NewRandomMatrix(d.Params.L+2, 2, sampler)
	if err != nil {
		return nil, nil, err
	}
	V, err := data.NewRandomMatrix(d.Params.L, 2, sampler)
	if err != nil {
		return nil, nil, err
	}

	UaVec, err := U.MulVec(aVec)
	if err != nil {
		return nil, nil, err
	}
	UaVec = UaVec.Mod(bn256.Order)

	VtMMat, err := V.Transpose().Mul(M)
	if err != nil {
		return nil, nil, err
	}
	VtMMat = VtMMat.Mod(bn256.Order)

	pubKey := &PartFHIPEPubKey{
		A:   aVec.MulG1(),
		Ua:  UaVec.MulG1(),
		VtM: VtMMat.MulG1(),
		M:   M.Copy(),
		MG1: M.MulG1(),
	}

	return pubKey, &PartFHIPESecKey{B: b, V: V, U: U}, nil
}

// DeriveKey derives the functional key for inner products with y.
func (d *PartFHIPE) DeriveKey(y data.Vector, secKey *PartFHIPESecKey) (data.VectorG2, error) {
	if len(y) != d.Params.L {
		return nil, fmt.Errorf("the dimension of the given vector does not match the dimension of the scheme")
	}
	if d.Params.Bound != nil {
		if err := y.CheckBound(d.Params.Bound); err != nil {
			return nil, err
		}
	}

	s, err := sample.NewUniform(bn256.Order).Sample()
	if err != nil {
		return nil, err
	}

	bs := secKey.B.MulScalar(s).Mod(bn256.Order)

	Vbs, err := secKey.V.MulVec(bs)
	if err != nil {
		return nil, err
	}
	yVbs := y.Add(Vbs).Mod(bn256.Order)
	key2 := append(bs, yVbs...)

	key1, err := secKey.U.Transpose().MulVec(key2)
	if err != nil {
		return nil, err
	}
	key1 = key1.Neg().Mod(bn256.Order)

	return append(key1, key2...).MulG2(), nil
}

// Encrypt encrypts the vector x = M * t given its coordinates t with
// respect to the public subspace basis. Entries of M * t must respect
// the bound.
func (d *PartFHIPE) Encrypt(t data.Vector, pubKey *PartFHIPEPubKey) (data.VectorG1, error) {
	x, err := pubKey.M.MulVec(t)
	if err != nil {
		return nil, err
	}
	if d.Params.Bound != nil {
		if err := x.CheckBound(d.Params.Bound); err != nil {
			return nil, err
		}
	}

	r, err := sample.NewUniform(bn256.Order).Sample()
	if err != nil {
		return nil, err
	}

	c := pubKey.A.MulScalar(r)
	Uc := pubKey.Ua.MulScalar(r)

	Mt := pubKey.MG1.MulVector(t)
	VtMtNeg := pubKey.VtM.MulVector(t).Neg()

	cipher2 := append(VtMtNeg, Mt...).Add(Uc)

	return append(c, cipher2...), nil
}

// SecEncrypt encrypts an arbitrary vector x using the master secret
// key.
func (d *PartFHIPE) SecEncrypt(x data.Vector, pubKey *PartFHIPEPubKey, secKey *PartFHIPESecKey) (data.VectorG1, error) {
	if len(x) != d.Params.L {
		return nil, fmt.Errorf("the dimension of the given vector does not match the dimension of the scheme")
	}
	if d.Params.Bound != nil {
		if err := x.CheckBound(d.Params.Bound); err != nil {
			return nil, err
		}
	}

	r, err := sample.NewUniform(bn256.Order).Sample()
	if err != nil {
		return nil, err
	}

	c := pubKey.A.MulScalar(r)
	Uc := pubKey.Ua.MulScalar(r)

	Vtx, err := secKey.V.Transpose().MulVec(x)
	if err != nil {
		return nil, err
	}
	Vtx = Vtx.Neg().Mod(bn256.Order)

	cipher2 := append(Vtx.MulG1(), x.MulG1()...).Add(Uc)

	return append(c, cipher2...), nil
}

// PartDecrypt pairs the ciphertext with the functional key, returning
// the encoded value g_T^<x, y>; the inner product itself still needs a
// discrete logarithm search.
func (d *PartFHIPE) PartDecrypt(cipher data.VectorG1, feKey data.VectorG2) (*bn256.GT, error) {
	if len(cipher) != d.Params.L+4 || len(feKey) != d.Params.L+4 {
		return nil, fmt.Errorf("the length of FE key or ciphertext does not match the dimension of the scheme")
	}

	return data.PairVectors(cipher, feKey), nil
}

// Decrypt recovers the inner product <x, y> from a ciphertext and a
// functional key.
func (d *PartFHIPE) Decrypt(cipher data.VectorG1, feKey data.VectorG2) (*big.Int, error) {
	dec, err := d.PartDecrypt(cipher, feKey)
	if err != nil {
		return nil, err
	}

	calc := dlog.NewCalc().InBN256().WithNeg()
	if d.Params.Bound != nil {
		bound := new(big.Int).Mul(d.Params.Bound, d.Params.Bound)
		bound.Mul(bound, big.NewInt(int64(d.Params.L)))
		calc = calc.WithBound(bound)
	}

	return calc.BabyStepGiantStep(dec, new(bn256.GT).ScalarBaseMult(big.NewInt(1)))
}
