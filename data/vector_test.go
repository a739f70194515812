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

func TestVector_BasicOps(t *testing.T) {
	l := 5
	bound := new(big.Int).Lsh(big.NewInt(1), 20)
	sampler := sample.NewUniformRange(new(big.Int).Neg(bound), bound)

	x, err := data.NewRandomVector(l, sampler)
	if err != nil {
		t.Fatalf("error during random generation: %v", err)
	}
	y, err := data.NewRandomVector(l, sampler)
	if err != nil {
		t.Fatalf("error during random generation: %v", err)
	}

	sum := x.Add(y)
	diff := x.Sub(y)
	neg := x.Neg()
	scaled := x.MulScalar(big.NewInt(3))
	modulo := big.NewInt(104729)
	mod := x.Mod(modulo)

	dot, err := x.Dot(y)
	if err != nil {
		t.Fatalf("error during dot product: %v", err)
	}

	dotCheck := new(big.Int)
	for i := 0; i < l; i++ {
		assert.Equal(t, new(big.Int).Add(x[i], y[i]), sum[i])
		assert.Equal(t, new(big.Int).Sub(x[i], y[i]), diff[i])
		assert.Equal(t, new(big.Int).Neg(x[i]), neg[i])
		assert.Equal(t, new(big.Int).Mul(x[i], big.NewInt(3)), scaled[i])
		assert.Equal(t, new(big.Int).Mod(x[i], modulo), mod[i])
		dotCheck.Add(dotCheck, new(big.Int).Mul(x[i], y[i]))
	}
	assert.Equal(t, dotCheck, dot)

	_, err = x.Dot(x[:l-1])
	assert.Error(t, err)
}

func TestVector_CheckBound(t *testing.T) {
	bound := big.NewInt(1000)

	atBound := data.Vector{big.NewInt(10), big.NewInt(1000)}
	assert.Error(t, atBound.CheckBound(bound), "value at the bound should be rejected")

	negAtBound := data.Vector{big.NewInt(-1000), big.NewInt(0)}
	assert.Error(t, negAtBound.CheckBound(bound), "negative value at the bound should be rejected")

	belowBound := data.Vector{big.NewInt(999), big.NewInt(-999)}
	assert.NoError(t, belowBound.CheckBound(bound), "values below the bound should be accepted")
}

func TestVector_MulAsPolyInRing(t *testing.T) {
	// (x^2 + 2x + 3) * (2x^2 + x) in Z[x]/(x^3 + 1)
	p1 := data.Vector{big.NewInt(3), big.NewInt(2), big.NewInt(1)}
	p2 := data.Vector{big.NewInt(0), big.NewInt(1), big.NewInt(2)}

	prod, err := p1.MulAsPolyInRing(p2)
	if err != nil {
		t.Fatalf("error in ring multiplication: %v", err)
	}

	assert.Equal(t, data.Vector{big.NewInt(-5), big.NewInt(1), big.NewInt(8)}, prod)
}

func TestVector_Tensor(t *testing.T) {
	v := data.Vector{big.NewInt(1), big.NewInt(2)}
	w := data.Vector{big.NewInt(3), big.NewInt(5)}

	prod := v.Tensor(w)
	expected := data.Vector{big.NewInt(3), big.NewInt(5), big.NewInt(6), big.NewInt(10)}
	assert.Equal(t, expected, prod)
}

func TestVector_DeterministicSampling(t *testing.T) {
	var key [32]byte
	for i := range key {
		key[i] = byte(i * 7)
	}
	max := big.NewInt(1000)

	v1, err := data.NewRandomDetVector(20, max, &key)
	if err != nil {
		t.Fatalf("error during deterministic sampling: %v", err)
	}
	v2, err := data.NewRandomDetVector(20, max, &key)
	if err != nil {
		t.Fatalf("error during deterministic sampling: %v", err)
	}

	assert.Equal(t, v1, v2, "same key should give the same vector")
	for _, c := range v1 {
		assert.True(t, c.Sign() >= 0 && c.Cmp(max) < 0)
	}
}
