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

	"github.com/fentec-project/bn256"
)

// MatrixG1 is a row-major matrix of BN256 G1 group elements.
type MatrixG1 []VectorG1

// Rows returns the number of rows of m.
func (m MatrixG1) Rows() int {
	return len(m)
}

// Cols returns the number of columns of m.
func (m MatrixG1) Cols() int {
	if len(m) == 0 {
		return 0
	}

	return len(m[0])
}

// GetCol returns the i-th column of m.
func (m MatrixG1) GetCol(i int) (VectorG1, error) {
	if i >= m.Cols() {
		return nil, fmt.Errorf("column index exceeds matrix dimensions")
	}

	col := make(VectorG1, m.Rows())
	for j := range m {
		col[j] = m[j][i]
	}

	return col, nil
}

// Transpose returns the transpose of m.
func (m MatrixG1) Transpose() MatrixG1 {
	t := make(MatrixG1, m.Cols())
	for i := range t {
		t[i], _ = m.GetCol(i)
	}

	return t
}

// Add returns the entry-wise sum of m and other.
func (m MatrixG1) Add(other MatrixG1) MatrixG1 {
	sum := make(MatrixG1, len(m))
	for i := range m {
		sum[i] = m[i].Add(other[i])
	}

	return sum
}

// MulScalar returns the matrix (x * m[i][j])_ij.
func (m MatrixG1) MulScalar(x *big.Int) MatrixG1 {
	prod := make(MatrixG1, len(m))
	for i := range m {
		prod[i] = m[i].MulScalar(x)
	}

	return prod
}

// MulVector computes the product of m with an integer vector: given
// m = t * [g1] it returns (t * v) * [g1].
func (m MatrixG1) MulVector(v Vector) VectorG1 {
	prod := make(VectorG1, m.Rows())
	for i := range m {
		sum := new(bn256.G1).ScalarBaseMult(big.NewInt(0))
		for k := 0; k < m.Cols(); k++ {
			sum.Add(sum, new(bn256.G1).ScalarMult(m[i][k], v[k]))
		}
		prod[i] = sum
	}

	return prod
}

// MatrixG2 is a row-major matrix of BN256 G2 group elements.
type MatrixG2 []VectorG2

// Rows returns the number of rows of m.
func (m MatrixG2) Rows() int {
	return len(m)
}

// Cols returns the number of columns of m.
func (m MatrixG2) Cols() int {
	if len(m) == 0 {
		return 0
	}

	return len(m[0])
}

// GetCol returns the i-th column of m.
func (m MatrixG2) GetCol(i int) (VectorG2, error) {
	if i >= m.Cols() {
		return nil, fmt.Errorf("column index exceeds matrix dimensions")
	}

	col := make(VectorG2, m.Rows())
	for j := range m {
		col[j] = m[j][i]
	}

	return col, nil
}

// Transpose returns the transpose of m.
func (m MatrixG2) Transpose() MatrixG2 {
	t := make(MatrixG2, m.Cols())
	for i := range t {
		t[i], _ = m.GetCol(i)
	}

	return t
}

// Add returns the entry-wise sum of m and other.
func (m MatrixG2) Add(other MatrixG2) MatrixG2 {
	sum := make(MatrixG2, len(m))
	for i := range m {
		sum[i] = m[i].Add(other[i])
	}

	return sum
}

// MulScalar returns the matrix (x * m[i][j])_ij.
func (m MatrixG2) MulScalar(x *big.Int) MatrixG2 {
	prod := make(MatrixG2, len(m))
	for i := range m {
		prod[i] = m[i].MulScalar(x)
	}

	return prod
}

// MulVector computes the product of m with an integer vector: given
// m = t * [g2] it returns (t * v) * [g2].
func (m MatrixG2) MulVector(v Vector) VectorG2 {
	prod := make(VectorG2, m.Rows())
	for i := range m {
		sum := new(bn256.G2).ScalarBaseMult(big.NewInt(0))
		for k := 0; k < m.Cols(); k++ {
			sum.Add(sum, new(bn256.G2).ScalarMult(m[i][k], v[k]))
		}
		prod[i] = sum
	}

	return prod
}
