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

package quadratic

import (
	"fmt"
	"math/big"

	"github.com/arx-crypto/arxfe/data"
	"github.com/arx-crypto/arxfe/innerprod/fullysec"
	"github.com/arx-crypto/arxfe/internal/dlog"
	"github.com/arx-crypto/arxfe/sample"
	"github.com/fentec-project/bn256"
)

// QuadParams holds configuration parameters for a Quad scheme
// instance: the underlying partially function hiding scheme, the
// lengths N >= M of the x and y vectors, and the bound on the entries
// of x, y and F.
type QuadParams struct {
	PartFHIPE *fullysec.PartFHIPE
	N         int
	M         int
	Bound     *big.Int
}

// Quad is a public-key functional encryption scheme for quadratic
// multi-variate polynomials based on Romain Gay: "A New Paradigm for
// Public-Key Functional Encryption for Degree-2 Polynomials". Vectors
// x and y are encrypted with the public key; the functional key for a
// matrix F decrypts x^T * F * y and nothing else. Internally the
// quadratic function is linearized into an inner product handled by a
// partially function hiding IPE scheme.
type Quad struct {
	Params *QuadParams
}

// NewQuad configures a new Quad scheme for vectors of lengths n >= m
// with entries bounded by b. It returns an error when
// 2 * n * m * b^3 exceeds the BN256 group order.
func NewQuad(n, m int, b *big.Int) (*Quad, error) {
	if n < m {
		return nil, fmt.Errorf("n should be greater or equal to m")
	}

	bound := new(big.Int).Exp(b, big.NewInt(3), nil)
	bound.Mul(bound, big.NewInt(int64(2*n*m)))
	if bound.Cmp(bn256.Order) > 0 {
		return nil, fmt.Errorf("bound and n, m too big for the group")
	}

	partFHIPE, err := fullysec.NewPartFHIPE(2*m+3*n, nil)
	if err != nil {
		return nil, err
	}

	return &Quad{
		Params: &QuadParams{
			PartFHIPE: partFHIPE,
			N:         n,
			M:         m,
			Bound:     new(big.Int).Set(b),
		},
	}, nil
}

// NewQuadFromParams reconstructs a Quad scheme from the parameters of
// an existing instance.
func NewQuadFromParams(params *QuadParams) *Quad {
	return &Quad{Params: params}
}

// QuadPubKey is the public key of the Quad scheme.
type QuadPubKey struct {
	Ua     data.VectorG1
	VB     data.MatrixG2
	PubIPE *fullysec.PartFHIPEPubKey
}

// QuadSecKey is the master secret key of the Quad scheme.
type QuadSecKey struct {
	U      data.Matrix
	V      data.Matrix
	SecIPE *fullysec.PartFHIPESecKey
}

// GenerateKeys generates a key pair for the scheme. The subspace
// matrix M handed to the inner IPE scheme is assembled from the DDH
// vector a and the DLIN matrix B so that exactly the linearized
// encodings produced by Encrypt are publicly encryptable.
func (q *Quad) GenerateKeys() (*QuadPubKey, *QuadSecKey, error) {
	sampler := sample.NewUniform(bn256.Order)

	// vector a over the DDH distribution
	a1, err := sampler.Sample()
	if err != nil {
		return nil, nil, err
	}
	a := data.Vector{big.NewInt(1), a1}

	// matrix B over the DLIN distribution
	b00, err := sampler.Sample()
	if err != nil {
		return nil, nil, err
	}
	b11, err := sampler.Sample()
	if err != nil {
		return nil, nil, err
	}
	B := data.Matrix{
		data.Vector{b00, big.NewInt(0)},
		data.Vector{big.NewInt(0), b11},
		data.NewConstantVector(2, big.NewInt(1)),
	}

	U, err := data.NewRandomMatrix(q.Params.N, 2, sampler)
	if err != nil {
		return nil, nil, err
	}
	V, err := data.NewRandomMatrix(q.Params.M, 3, sampler)
	if err != nil {
		return nil, nil, err
	}

	UaVec, err := U.MulVec(a)
	if err != nil {
		return nil, nil, err
	}
	Ua := UaVec.Mod(bn256.Order).MulG1()

	VBMat, err := V.Mul(B)
	if err != nil {
		return nil, nil, err
	}
	VBMat = VBMat.Mod(bn256.Order)
	VB := VBMat.MulG2()

	// upper block: a tensor (I | VB), zero-padded on the right
	IdnVB, err := data.Identity(q.Params.M, q.Params.M).JoinCols(VBMat)
	if err != nil {
		return nil, nil, err
	}
	aMat := data.Matrix{a}.Transpose()
	aTensor := aMat.Tensor(IdnVB).Mod(bn256.Order)
	M0, err := aTensor.JoinCols(data.NewConstantMatrix(2*q.Params.M, 2*q.Params.N, big.NewInt(0)))
	if err != nil {
		return nil, nil, err
	}

	// lower block: I tensor B, zero-padded on the left
	IdnB := data.Identity(q.Params.N, q.Params.N).Tensor(B)
	M1, err := data.NewConstantMatrix(3*q.Params.N, IdnVB.Cols(), big.NewInt(0)).JoinCols(IdnB)
	if err != nil {
		return nil, nil, err
	}

	M, err := M0.JoinRows(M1)
	if err != nil {
		return nil, nil, err
	}

	pkIPE, skIPE, err := q.Params.PartFHIPE.GenerateKeys(M)
	if err != nil {
		return nil, nil, err
	}

	return &QuadPubKey{Ua: Ua, VB: VB, PubIPE: pkIPE},
		&QuadSecKey{U: U, V: V, SecIPE: skIPE}, nil
}

// QuadCipher is a ciphertext of the Quad scheme.
type QuadCipher struct {
	Cx   data.VectorG1
	Cy   data.VectorG2
	CIPE data.VectorG1
}

// Encrypt encrypts the vectors x and y under the public key.
func (q *Quad) Encrypt(x, y data.Vector, pubKey *QuadPubKey) (*QuadCipher, error) {
	if len(x) != q.Params.N || len(y) != q.Params.M {
		return nil, fmt.Errorf("dimensions of vectors are incorrect")
	}
	if err := x.CheckBound(q.Params.Bound); err != nil {
		return nil, err
	}
	if err := y.CheckBound(q.Params.Bound); err != nil {
		return nil, err
	}

	sampler := sample.NewUniform(bn256.Order)
	r, err := sampler.Sample()
	if err != nil {
		return nil, err
	}
	s, err := data.NewRandomVector(2, sampler)
	if err != nil {
		return nil, err
	}

	Cx := x.MulG1().Add(pubKey.Ua.MulScalar(r))
	Cy := y.MulG2().Add(pubKey.VB.MulVector(s))

	// linearized encoding (r * (y | s), x tensor s) handed to the
	// inner IPE scheme via its public subspace basis
	rys := append(y, s...).MulScalar(r)
	xIPE := append(rys, x.Tensor(s)...).Mod(bn256.Order)
	cIPE, err := q.Params.PartFHIPE.Encrypt(xIPE, pubKey.PubIPE)
	if err != nil {
		return nil, err
	}

	return &QuadCipher{Cx: Cx, Cy: Cy, CIPE: cIPE}, nil
}

// DeriveKey derives the functional key for the matrix F, an inner IPE
// key for the linearized vector (U^T F, F V).
func (q *Quad) DeriveKey(secKey *QuadSecKey, F data.Matrix) (data.VectorG2, error) {
	if F.Rows() != q.Params.N || F.Cols() != q.Params.M {
		return nil, fmt.Errorf("dimensions of the given matrix are incorrect")
	}

	UtF, err := secKey.U.Transpose().Mul(F)
	if err != nil {
		return nil, err
	}
	FV, err := F.Mul(secKey.V)
	if err != nil {
		return nil, err
	}

	yIPE := append(UtF.Mod(bn256.Order).ToVec(), FV.Mod(bn256.Order).ToVec()...)

	return q.Params.PartFHIPE.DeriveKey(yIPE, secKey.SecIPE)
}

// Decrypt recovers x^T * F * y from a ciphertext and a functional key
// for F, decoding the result within the bound N * M * Bound^3.
func (q *Quad) Decrypt(c *QuadCipher, feKey data.VectorG2, F data.Matrix) (*big.Int, error) {
	if len(feKey) != q.Params.PartFHIPE.Params.L+4 {
		return nil, fmt.Errorf("dimensions of the given FE key are incorrect")
	}
	if F.Rows() != q.Params.N || F.Cols() != q.Params.M {
		return nil, fmt.Errorf("dimensions of the given matrix are incorrect")
	}

	d, err := q.Params.PartFHIPE.PartDecrypt(c.CIPE, feKey)
	if err != nil {
		return nil, err
	}

	FCy, err := F.MatMulVecG2(c.Cy)
	if err != nil {
		return nil, err
	}

	dec := data.PairVectors(c.Cx[:q.Params.N], FCy)
	dec.Add(dec, new(bn256.GT).Neg(d))

	bound := new(big.Int).Exp(q.Params.Bound, big.NewInt(3), nil)
	bound.Mul(bound, big.NewInt(int64(q.Params.N*q.Params.M)))

	return dlog.NewCalc().InBN256().WithBound(bound).WithNeg().
		BabyStepGiantStep(dec, new(bn256.GT).ScalarBaseMult(big.NewInt(1)))
}
