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

package keygen_test

import (
	"math/big"
	"testing"

	"github.com/arx-crypto/arxfe/internal/keygen"
	"github.com/stretchr/testify/assert"
)

func TestGetSafePrime(t *testing.T) {
	bits := 160
	p, err := keygen.GetSafePrime(bits)
	if err != nil {
		t.Fatalf("error during safe prime generation: %v", err)
	}

	assert.Equal(t, bits, p.BitLen())
	assert.True(t, p.ProbablyPrime(40), "p should be prime")

	q := new(big.Int).Rsh(new(big.Int).Sub(p, big.NewInt(1)), 1)
	assert.True(t, q.ProbablyPrime(40), "(p-1)/2 should be prime")
}

func TestGetGermainPrime(t *testing.T) {
	q, err := keygen.GetGermainPrime(64)
	if err != nil {
		t.Fatalf("error during germain prime generation: %v", err)
	}

	assert.True(t, q.ProbablyPrime(40), "q should be prime")
	p := new(big.Int).Lsh(q, 1)
	p.Add(p, big.NewInt(1))
	assert.True(t, p.ProbablyPrime(40), "2q + 1 should be prime")
}

func TestNewElGamal(t *testing.T) {
	key, err := keygen.NewElGamal(160)
	if err != nil {
		t.Fatalf("error during group generation: %v", err)
	}

	one := big.NewInt(1)
	assert.Equal(t, one, new(big.Int).Exp(key.G, key.Q, key.P),
		"generator should have order Q")
	assert.NotEqual(t, one, key.G, "generator should not be trivial")
	assert.True(t, key.Y.Cmp(key.P) < 0)
}
