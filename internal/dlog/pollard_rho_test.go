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

package dlog

import (
	"math/big"
	"testing"

	"github.com/arx-crypto/arxfe/internal/keygen"
	"github.com/stretchr/testify/assert"
	emmy "github.com/xlab-si/emmy/crypto/common"
)

func pollardRhoParams(t *testing.T) (g, p, order *big.Int) {
	key, err := keygen.NewElGamal(32)
	if err != nil {
		t.Fatalf("error during group generation: %v", err)
	}

	return key.G, key.P, key.Q
}

func TestPollardRho(t *testing.T) {
	g, p, order := pollardRhoParams(t)

	xCheck, err := emmy.GetRandomIntFromRange(big.NewInt(2), order)
	if err != nil {
		t.Fatalf("error during random int generation: %v", err)
	}
	h := new(big.Int).Exp(g, xCheck, p)

	x, err := pollardRho(h, g, p, order)
	if err != nil {
		t.Fatalf("error in pollard rho algorithm: %v", err)
	}
	assert.Equal(t, xCheck, x)
}

func TestPollardRhoParallel(t *testing.T) {
	g, p, order := pollardRhoParams(t)

	xCheck, err := emmy.GetRandomIntFromRange(big.NewInt(2), order)
	if err != nil {
		t.Fatalf("error during random int generation: %v", err)
	}
	h := new(big.Int).Exp(g, xCheck, p)

	x, err := pollardRhoParallel(h, g, p, order)
	if err != nil {
		t.Fatalf("error in pollard rho algorithm: %v", err)
	}
	assert.Equal(t, xCheck, x)
}

func TestPollardRhoFactorization(t *testing.T) {
	n := emmy.GetRandomIntOfLength(32)

	factorization, err := pollardRhoFactorization(n, nil)
	if err != nil {
		t.Fatalf("error in pollard rho factorization: %v", err)
	}

	check := big.NewInt(1)
	for factorStr, multiplicity := range factorization {
		factor, ok := new(big.Int).SetString(factorStr, 10)
		assert.True(t, ok)
		assert.True(t, factor.ProbablyPrime(20), "factors should be prime")
		for i := 0; i < multiplicity; i++ {
			check.Mul(check, factor)
		}
	}
	assert.Equal(t, n, check, "product of factors should give back the number")
}

func TestBruteForce(t *testing.T) {
	g, p, _ := pollardRhoParams(t)

	xCheck := big.NewInt(1234)
	h := new(big.Int).Exp(g, xCheck, p)

	x, err := bruteForce(h, g, p, big.NewInt(2000))
	if err != nil {
		t.Fatalf("error in brute force search: %v", err)
	}
	assert.Equal(t, xCheck, x)

	_, err = bruteForce(h, g, p, big.NewInt(1000))
	assert.Error(t, err)
}
