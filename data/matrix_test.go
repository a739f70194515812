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

package data_test

import (
	"math/big"
	"testing"

	"github.com/arx-crypto/arxfe/data"
	"github.com/arx-crypto/arxfe/sample"
	"github.com/stretchr/testify/assert"
)

func TestMatrix_BasicOps(t *testing.T) {
	sampler := sample.NewUniform(big.NewInt(100))

	m, err := data.NewRandomMatrix(3, 4, sampler)
	if err != nil {
		t.Fatalf("error during random generation: %v", err)
	}

	assert.Equal(t, 3, m.Rows())
	assert.Equal(t, 4, m.Cols())

	mT := m.Transpose()
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			assert.Equal(t, m[i][j], mT[j][i])
		}
	}

	id := data.Identity(4, 4)
	prod, err := m.Mul(id)
	if err != nil {
		t.Fatalf("error during multiplication: %v", err)
	}
	assert.Equal(t, m, prod, "multiplication with identity should not change the matrix")

	_, err = m.Mul(m)
	assert.Error(t, err, "dimension mismatch should be reported")

	_, err = data.NewMatrix([]data.Vector{
		{big.NewInt(1), big.NewInt(2)},
		{big.NewInt(1)},
	})
	assert.Error(t, err, "rows of different lengths should be rejected")
}

func TestMatrix_InverseMod(t *testing.T) {
	p := big.NewInt(104729)
	sampler := sample.NewUniform(p)

	m, err := data.NewRandomMatrix(4, 4, sampler)
	if err != nil {
		t.Fatalf("error during random generation: %v", err)
	}

	inv, err := m.InverseMod(p)
	if err != nil {
		// singular matrices are possible but rare; retry once
		m, _ = data.NewRandomMatrix(4, 4, sampler)
		inv, err = m.InverseMod(p)
		if err != nil {
			t.Fatalf("error during inversion: %v", err)
		}
	}

	prod, err := m.Mul(inv)
	if err != nil {
		t.Fatalf("error during multiplication: %v", err)
	}
	assert.Equal(t, data.Identity(4, 4), prod.Mod(p))
}

func TestMatrix_InverseModGauss(t *testing.T) {
	p := big.NewInt(104729)
	sampler := sample.NewUniform(p)

	m, err := data.NewRandomMatrix(5, 5, sampler)
	if err != nil {
		t.Fatalf("error during random generation: %v", err)
	}

	inv, detGauss, err := m.InverseModGauss(p)
	if err != nil {
		t.Skipf("sampled a singular matrix: %v", err)
	}

	prod, err := m.Mul(inv)
	if err != nil {
		t.Fatalf("error during multiplication: %v", err)
	}
	assert.Equal(t, data.Identity(5, 5), prod.Mod(p))

	det, err := m.Determinant()
	if err != nil {
		t.Fatalf("error during determinant calculation: %v", err)
	}
	assert.Equal(t, det.Mod(det, p), detGauss, "gaussian and cofactor determinants should agree")

	detG2, err := m.DeterminantGauss(p)
	if err != nil {
		t.Fatalf("error during determinant calculation: %v", err)
	}
	assert.Equal(t, detGauss, detG2)
}

func TestMatrix_GaussianEliminationSolver(t *testing.T) {
	p := big.NewInt(104729)
	sampler := sample.NewUniform(p)

	m, err := data.NewRandomMatrix(5, 5, sampler)
	if err != nil {
		t.Fatalf("error during random generation: %v", err)
	}
	xCheck, err := data.NewRandomVector(5, sampler)
	if err != nil {
		t.Fatalf("error during random generation: %v", err)
	}
	v, err := m.MulVec(xCheck)
	if err != nil {
		t.Fatalf("error during multiplication: %v", err)
	}
	v = v.Mod(p)

	x, err := data.GaussianEliminationSolver(m, v, p)
	if err != nil {
		t.Fatalf("error during solving: %v", err)
	}
	vCheck, err := m.MulVec(x)
	if err != nil {
		t.Fatalf("error during multiplication: %v", err)
	}
	assert.Equal(t, v, vCheck.Mod(p), "solution should solve the system")

	// a zero system with a nonzero right side has no solution
	zeroMat := data.NewConstantMatrix(3, 3, big.NewInt(0))
	rhs := data.Vector{big.NewInt(1), big.NewInt(0), big.NewInt(0)}
	_, err = data.GaussianEliminationSolver(zeroMat, rhs, p)
	assert.Error(t, err)
}

func TestMatrix_TensorAndJoin(t *testing.T) {
	a := data.Matrix{
		{big.NewInt(1), big.NewInt(2)},
		{big.NewInt(3), big.NewInt(4)},
	}
	b := data.Matrix{
		{big.NewInt(0), big.NewInt(1)},
	}

	tens := a.Tensor(b)
	assert.Equal(t, 2, tens.Rows())
	assert.Equal(t, 4, tens.Cols())
	assert.Equal(t, big.NewInt(2), tens[0][3])

	joined, err := a.JoinCols(a)
	if err != nil {
		t.Fatalf("error during joining: %v", err)
	}
	assert.Equal(t, 4, joined.Cols())

	stacked, err := a.JoinRows(a)
	if err != nil {
		t.Fatalf("error during joining: %v", err)
	}
	assert.Equal(t, 4, stacked.Rows())

	flat := a.ToVec()
	assert.Equal(t, data.Vector{big.NewInt(1), big.NewInt(2), big.NewInt(3), big.NewInt(4)}, flat)
}
