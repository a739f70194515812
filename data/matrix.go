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

package data

import (
	"fmt"
	"math/big"

	"github.com/arx-crypto/arxfe/sample"
	"github.com/fentec-project/bn256"
)

// Matrix is a row-major matrix of *big.Int entries, represented as a
// slice of its rows. Entry (i, j) is m[i][j].
type Matrix []Vector

// NewMatrix wraps a slice of rows into a Matrix. It returns an error
// when the rows differ in length.
func NewMatrix(rows []Vector) (Matrix, error) {
	cols := -1
	if len(rows) > 0 {
		cols = len(rows[0])
	}

	m := make(Matrix, len(rows))
	for i, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("all rows should be of the same length")
		}
		m[i] = NewVector(r)
	}

	return m, nil
}

// NewRandomMatrix returns a rows x cols matrix with entries drawn
// independently from the given sampler.
func NewRandomMatrix(rows, cols int, sampler sample.Sampler) (Matrix, error) {
	m := make([]Vector, rows)
	for i := range m {
		r, err := NewRandomVector(cols, sampler)
		if err != nil {
			return nil, err
		}
		m[i] = r
	}

	return NewMatrix(m)
}

// NewRandomDetMatrix returns a rows x cols matrix with entries
// pseudo-randomly chosen from [0, max) by the keyed deterministic
// generator underlying NewRandomDetVector.
func NewRandomDetMatrix(rows, cols int, max *big.Int, key *[32]byte) (Matrix, error) {
	flat, err := NewRandomDetVector(rows*cols, max, key)
	if err != nil {
		return nil, err
	}

	m := make([]Vector, rows)
	for i := range m {
		m[i] = flat[i*cols : (i+1)*cols]
	}

	return NewMatrix(m)
}

// NewConstantMatrix returns a rows x cols matrix with every entry set
// to an independent copy of c.
func NewConstantMatrix(rows, cols int, c *big.Int) Matrix {
	m := make(Matrix, rows)
	for i := range m {
		m[i] = NewConstantVector(cols, c)
	}

	return m
}

// Rows returns the number of rows of m.
func (m Matrix) Rows() int {
	return len(m)
}

// Cols returns the number of columns of m.
func (m Matrix) Cols() int {
	if len(m) == 0 {
		return 0
	}

	return len(m[0])
}

// DimsMatch reports whether m and other have equal dimensions.
func (m Matrix) DimsMatch(other Matrix) bool {
	return m.Rows() == other.Rows() && m.Cols() == other.Cols()
}

// CheckDims reports whether m is a rows x cols matrix.
func (m Matrix) CheckDims(rows, cols int) bool {
	return m.Rows() == rows && m.Cols() == cols
}

// GetCol returns the i-th column of m as a vector.
func (m Matrix) GetCol(i int) (Vector, error) {
	if i >= m.Cols() {
		return nil, fmt.Errorf("column index exceeds matrix dimensions")
	}

	col := make(Vector, m.Rows())
	for j, row := range m {
		col[j] = row[i]
	}

	return col, nil
}

// Transpose returns the transpose of m.
func (m Matrix) Transpose() Matrix {
	t := make([]Vector, m.Cols())
	for i := range t {
		t[i], _ = m.GetCol(i)
	}

	mT, _ := NewMatrix(t)

	return mT
}

// Copy returns an independent copy of m.
func (m Matrix) Copy() Matrix {
	return m.Apply(func(c *big.Int) *big.Int {
		return new(big.Int).Set(c)
	})
}

// Apply maps f over all entries of m and collects the results in a new
// matrix.
func (m Matrix) Apply(f func(*big.Int) *big.Int) Matrix {
	res := make(Matrix, len(m))
	for i, row := range m {
		res[i] = row.Apply(f)
	}

	return res
}

// Mod reduces every entry of m modulo modulo.
func (m Matrix) Mod(modulo *big.Int) Matrix {
	return m.Apply(func(c *big.Int) *big.Int {
		return new(big.Int).Mod(c, modulo)
	})
}

// CheckBound verifies that the absolute value of every entry is
// strictly smaller than bound.
func (m Matrix) CheckBound(bound *big.Int) error {
	for _, row := range m {
		if err := row.CheckBound(bound); err != nil {
			return err
		}
	}

	return nil
}

// Add returns the entry-wise sum of m and other.
func (m Matrix) Add(other Matrix) (Matrix, error) {
	if !m.DimsMatch(other) {
		return nil, fmt.Errorf("matrices mismatch in dimensions")
	}

	rows := make([]Vector, m.Rows())
	for i, row := range m {
		rows[i] = row.Add(other[i])
	}

	return NewMatrix(rows)
}

// Sub returns the entry-wise difference of m and other.
func (m Matrix) Sub(other Matrix) (Matrix, error) {
	if !m.DimsMatch(other) {
		return nil, fmt.Errorf("matrices mismatch in dimensions")
	}

	rows := make([]Vector, m.Rows())
	for i, row := range m {
		rows[i] = row.Sub(other[i])
	}

	return NewMatrix(rows)
}

// Dot returns the sum over i of the inner products of the i-th rows of
// m and other.
func (m Matrix) Dot(other Matrix) (*big.Int, error) {
	if !m.DimsMatch(other) {
		return nil, fmt.Errorf("matrices mismatch in dimensions")
	}

	res := new(big.Int)
	for i, row := range m {
		p, err := row.Dot(other[i])
		if err != nil {
			return nil, err
		}
		res.Add(res, p)
	}

	return res, nil
}

// Mul returns the matrix product m * other.
func (m Matrix) Mul(other Matrix) (Matrix, error) {
	if m.Cols() != other.Rows() {
		return nil, fmt.Errorf("cannot multiply matrices")
	}

	otherT := other.Transpose()
	prod := make([]Vector, m.Rows())
	for i, row := range m {
		prod[i] = make(Vector, other.Cols())
		for j := range prod[i] {
			prod[i][j], _ = row.Dot(otherT[j])
		}
	}

	return NewMatrix(prod)
}

// MulScalar returns x * m.
func (m Matrix) MulScalar(x *big.Int) Matrix {
	return m.Apply(func(c *big.Int) *big.Int {
		return new(big.Int).Mul(x, c)
	})
}

// MulVec returns the matrix-vector product m * v.
func (m Matrix) MulVec(v Vector) (Vector, error) {
	if m.Cols() != len(v) {
		return nil, fmt.Errorf("cannot multiply matrix by a vector")
	}

	res := make(Vector, m.Rows())
	for i, row := range m {
		res[i], _ = row.Dot(v)
	}

	return res, nil
}

// MulXMatY returns the value x^T * m * y.
func (m Matrix) MulXMatY(x, y Vector) (*big.Int, error) {
	my, err := m.MulVec(y)
	if err != nil {
		return nil, err
	}

	return my.Dot(x)
}

// Tensor returns the tensor (Kronecker) product of m and other.
func (m Matrix) Tensor(other Matrix) Matrix {
	prod := make(Matrix, m.Rows()*other.Rows())
	for i := range prod {
		prod[i] = make(Vector, m.Cols()*other.Cols())
		for j := range prod[i] {
			prod[i][j] = new(big.Int).Mul(m[i/other.Rows()][j/other.Cols()],
				other[i%other.Rows()][j%other.Cols()])
		}
	}

	return prod
}

// Identity returns a rows x cols matrix with ones on the diagonal and
// zeros elsewhere.
func Identity(rows, cols int) Matrix {
	m := NewConstantMatrix(rows, cols, big.NewInt(0))
	for i := 0; i < rows && i < cols; i++ {
		m[i][i] = big.NewInt(1)
	}

	return m
}

// ToVec flattens m into a vector in row-major order.
func (m Matrix) ToVec() Vector {
	v := make(Vector, 0, m.Rows()*m.Cols())
	for _, row := range m {
		v = append(v, row...)
	}

	return v
}

// JoinRows joins m and other into a single matrix containing the rows
// of both, m's first.
func (m Matrix) JoinRows(other Matrix) (Matrix, error) {
	if m.Cols() != other.Cols() {
		return nil, fmt.Errorf("matrices should have the same number of columns")
	}

	return NewMatrix(append(append([]Vector{}, m...), other...))
}

// JoinCols joins m and other into a single matrix containing the
// columns of both, m's first.
func (m Matrix) JoinCols(other Matrix) (Matrix, error) {
	if m.Rows() != other.Rows() {
		return nil, fmt.Errorf("matrices should have the same number of rows")
	}

	rows := make([]Vector, m.Rows())
	for i, row := range m {
		rows[i] = append(append(Vector{}, row...), other[i]...)
	}

	return NewMatrix(rows)
}

// Minor returns m with row i and column j removed.
func (m Matrix) Minor(i, j int) (Matrix, error) {
	if i >= m.Rows() || j >= m.Cols() {
		return nil, fmt.Errorf("cannot obtain minor - out of bounds")
	}

	minor := make(Matrix, 0, m.Rows()-1)
	for k, row := range m {
		if k == i {
			continue
		}
		r := make(Vector, 0, m.Cols()-1)
		r = append(r, row[:j]...)
		r = append(r, row[j+1:]...)
		minor = append(minor, r)
	}

	return NewMatrix(minor)
}

// Determinant returns the determinant of m over the integers, computed
// by cofactor expansion along the first row.
func (m Matrix) Determinant() (*big.Int, error) {
	if m.Rows() == 1 {
		return new(big.Int).Set(m[0][0]), nil
	}

	det := new(big.Int)
	sign := int64(1)
	for i := range m[0] {
		minor, err := m.Minor(0, i)
		if err != nil {
			return nil, err
		}
		sub, err := minor.Determinant()
		if err != nil {
			return nil, err
		}
		sub.Mul(sub, m[0][i])
		if sign < 0 {
			sub.Neg(sub)
		}
		det.Add(det, sub)
		sign = -sign
	}

	return det, nil
}

// InverseMod returns the inverse of m over Z_p, computed via the
// adjugate. It returns an error when m is singular mod p.
func (m Matrix) InverseMod(p *big.Int) (Matrix, error) {
	det, err := m.Determinant()
	if err != nil {
		return nil, err
	}
	det.Mod(det, p)
	if det.Sign() == 0 {
		return nil, fmt.Errorf("matrix non-invertable")
	}
	detInv := new(big.Int).ModInverse(det, p)

	if m.Rows() == 1 {
		return Matrix{Vector{detInv}}, nil
	}

	cof := make(Matrix, m.Rows())
	for i := range cof {
		cof[i] = make(Vector, m.Cols())
		for j := range cof[i] {
			minor, err := m.Minor(i, j)
			if err != nil {
				return nil, err
			}
			val, err := minor.Determinant()
			if err != nil {
				return nil, err
			}
			val.Mod(val, p)
			if (i+j)%2 == 1 {
				val.Neg(val)
			}
			val.Mul(val, detInv)
			cof[i][j] = val.Mod(val, p)
		}
	}

	return cof.Transpose(), nil
}

// MulG1 lifts m to G1 entry-wise.
func (m Matrix) MulG1() MatrixG1 {
	lift := make(MatrixG1, len(m))
	for i, row := range m {
		lift[i] = row.MulG1()
	}

	return lift
}

// MulG2 lifts m to G2 entry-wise.
func (m Matrix) MulG2() MatrixG2 {
	lift := make(MatrixG2, len(m))
	for i, row := range m {
		lift[i] = row.MulG2()
	}

	return lift
}

// MatMulMatG1 computes the product of m with a lifted matrix: given
// other = t * [g1] it returns (m * t) * [g1].
func (m Matrix) MatMulMatG1(other MatrixG1) (MatrixG1, error) {
	if m.Cols() != other.Rows() {
		return nil, fmt.Errorf("cannot multiply matrices")
	}

	prod := make(MatrixG1, m.Rows())
	for i := range prod {
		prod[i] = make(VectorG1, other.Cols())
		for j := range prod[i] {
			sum := new(bn256.G1).ScalarBaseMult(big.NewInt(0))
			for k := 0; k < m.Cols(); k++ {
				mik := new(big.Int).Set(m[i][k])
				e := new(bn256.G1).Set(other[k][j])
				if mik.Sign() < 0 {
					mik.Neg(mik)
					e.Neg(e)
				}
				sum.Add(sum, new(bn256.G1).ScalarMult(e, mik))
			}
			prod[i][j] = sum
		}
	}

	return prod, nil
}

// MatMulMatG2 computes the product of m with a lifted matrix: given
// other = t * [g2] it returns (m * t) * [g2].
func (m Matrix) MatMulMatG2(other MatrixG2) (MatrixG2, error) {
	if m.Cols() != other.Rows() {
		return nil, fmt.Errorf("cannot multiply matrices")
	}

	prod := make(MatrixG2, m.Rows())
	for i := range prod {
		prod[i] = make(VectorG2, other.Cols())
		for j := range prod[i] {
			sum := new(bn256.G2).ScalarBaseMult(big.NewInt(0))
			for k := 0; k < m.Cols(); k++ {
				mik := new(big.Int).Set(m[i][k])
				e := new(bn256.G2).Set(other[k][j])
				if mik.Sign() < 0 {
					mik.Neg(mik)
					e.Neg(e)
				}
				sum.Add(sum, new(bn256.G2).ScalarMult(e, mik))
			}
			prod[i][j] = sum
		}
	}

	return prod, nil
}

// MatMulVecG2 computes the product of m with a lifted vector: given
// other = t * [g2] it returns (m * t) * [g2].
func (m Matrix) MatMulVecG2(other VectorG2) (VectorG2, error) {
	if m.Cols() != len(other) {
		return nil, fmt.Errorf("dimensions don't fit")
	}

	prod := make(VectorG2, m.Rows())
	for i, row := range m {
		sum := new(bn256.G2).ScalarBaseMult(big.NewInt(0))
		for k, c := range row {
			ck := new(big.Int).Set(c)
			e := new(bn256.G2).Set(other[k])
			if ck.Sign() < 0 {
				ck.Neg(ck)
				e.Neg(e)
			}
			sum.Add(sum, new(bn256.G2).ScalarMult(e, ck))
		}
		prod[i] = sum
	}

	return prod, nil
}
