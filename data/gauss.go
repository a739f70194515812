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
)

// GaussianElimination returns an upper triangular matrix row-equivalent
// to m, with all arithmetic done over Z_p.
func (m Matrix) GaussianElimination(p *big.Int) (Matrix, error) {
	if m.Rows() == 0 || m.Cols() == 0 {
		return nil, fmt.Errorf("the matrix should not be empty")
	}

	res := m.Copy().Mod(p)

	h, k := 0, 0
	for h < res.Rows() && k < res.Cols() {
		pivot := -1
		for i := h; i < res.Rows(); i++ {
			if res[i][k].Sign() != 0 {
				pivot = i
				break
			}
		}
		if pivot == -1 {
			k++
			continue
		}
		if pivot != h {
			// a row swap flips the sign of the determinant; negating
			// the row moved down keeps the determinant unchanged
			res[h], res[pivot] = res[pivot], res[h]
			res[pivot] = res[pivot].Neg().Mod(p)
		}

		pivotInv := new(big.Int).ModInverse(res[h][k], p)
		for i := h + 1; i < res.Rows(); i++ {
			f := new(big.Int).Mul(pivotInv, res[i][k])
			res[i][k] = big.NewInt(0)
			for j := k + 1; j < res.Cols(); j++ {
				res[i][j].Sub(res[i][j], new(big.Int).Mul(f, res[h][j]))
				res[i][j].Mod(res[i][j], p)
			}
		}
		h++
		k++
	}

	return res, nil
}

// InverseModGauss returns the inverse of m over Z_p together with the
// determinant of m mod p, using Gaussian elimination on the matrix
// extended with the identity. When m is singular mod p the determinant
// is still returned alongside the error.
func (m Matrix) InverseModGauss(p *big.Int) (Matrix, *big.Int, error) {
	if m.Rows() == 0 || m.Cols() == 0 {
		return nil, nil, fmt.Errorf("the matrix should not be empty")
	}
	if m.Rows() != m.Cols() {
		return nil, nil, fmt.Errorf("the number of rows must equal the number of columns")
	}
	n := m.Rows()

	id := make(Matrix, n)
	for i := range id {
		id[i] = NewConstantVector(n, big.NewInt(0))
		id[i][i] = big.NewInt(1)
	}
	ext, err := m.JoinCols(id)
	if err != nil {
		return nil, nil, err
	}

	triang, err := ext.GaussianElimination(p)
	if err != nil {
		return nil, nil, err
	}

	det := big.NewInt(1)
	for i := 0; i < n; i++ {
		det.Mul(det, triang[i][i])
		det.Mod(det, p)
	}
	if det.Sign() == 0 {
		return nil, det, fmt.Errorf("matrix non-invertable")
	}

	// back substitution, one column of the inverse per unit vector
	inv := make(Matrix, n)
	for k := 0; k < n; k++ {
		inv[k] = make(Vector, n)
		for i := n - 1; i >= 0; i-- {
			sum, _ := triang[i][i+1 : n].Dot(inv[k][i+1:])
			val := new(big.Int).Sub(triang[i][n+k], sum)
			val.Mul(val, new(big.Int).ModInverse(triang[i][i], p))
			inv[k][i] = val.Mod(val, p)
		}
	}

	return inv.Transpose(), det, nil
}

// DeterminantGauss returns the determinant of m over Z_p using
// Gaussian elimination.
func (m Matrix) DeterminantGauss(p *big.Int) (*big.Int, error) {
	if m.Rows() != m.Cols() {
		return nil, fmt.Errorf("number of rows must equal number of columns")
	}

	triang, err := m.GaussianElimination(p)
	if err != nil {
		return nil, err
	}

	det := big.NewInt(1)
	for i := 0; i < m.Cols(); i++ {
		det.Mul(det, triang[i][i])
		det.Mod(det, p)
	}

	return det, nil
}

// GaussianEliminationSolver solves mat * x = v over Z_p and returns
// some solution x. Free variables are set to zero. It returns an error
// when the system has no solution.
func GaussianEliminationSolver(mat Matrix, v Vector, p *big.Int) (Vector, error) {
	if mat.Rows() == 0 || mat.Cols() == 0 {
		return nil, fmt.Errorf("the matrix should not be empty")
	}
	if mat.Rows() != len(v) {
		return nil, fmt.Errorf("dimensions should match: rows of the matrix %d, length of the vector %d",
			mat.Rows(), len(v))
	}

	m := mat.Copy().Mod(p)
	u := v.Copy().Mod(p)
	x := make(Vector, mat.Cols())

	// forward elimination on the augmented system; columns without a
	// pivot correspond to free variables fixed at zero
	h, k := 0, 0
	for h < m.Rows() && k < m.Cols() {
		pivot := -1
		for i := h; i < m.Rows(); i++ {
			if m[i][k].Sign() != 0 {
				pivot = i
				break
			}
		}
		if pivot == -1 {
			x[k] = big.NewInt(0)
			k++
			continue
		}
		m[h], m[pivot] = m[pivot], m[h]
		u[h], u[pivot] = u[pivot], u[h]

		pivotInv := new(big.Int).ModInverse(m[h][k], p)
		for i := h + 1; i < m.Rows(); i++ {
			f := new(big.Int).Mul(pivotInv, m[i][k])
			m[i][k] = big.NewInt(0)
			for j := k + 1; j < m.Cols(); j++ {
				m[i][j].Sub(m[i][j], new(big.Int).Mul(f, m[h][j]))
				m[i][j].Mod(m[i][j], p)
			}
			u[i].Sub(u[i], new(big.Int).Mul(f, u[h]))
			u[i].Mod(u[i], p)
		}
		h++
		k++
	}

	for i := h; i < m.Rows(); i++ {
		if u[i].Sign() != 0 {
			return nil, fmt.Errorf("no solution")
		}
	}
	for j := k; j < m.Cols(); j++ {
		x[j] = big.NewInt(0)
	}

	// back substitution over the pivot columns
	for i := h - 1; i >= 0; i-- {
		col := 0
		for m[i][col].Sign() == 0 {
			col++
		}
		sum, _ := m[i][col+1:].Dot(x[col+1:])
		val := new(big.Int).Sub(u[i], sum)
		val.Mul(val, new(big.Int).ModInverse(m[i][col], p))
		x[col] = val.Mod(val, p)
	}

	return x, nil
}
