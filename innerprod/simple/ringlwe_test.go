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

package simple_test

import (
	"math/big"
	"testing"

	"github.com/arx-crypto/arxfe/data"
	"github.com/arx-crypto/arxfe/innerprod/simple"
	"github.com/arx-crypto/arxfe/sample"
	"github.com/stretchr/testify/assert"
)

func TestSimple_RingLWE(t *testing.T) {
	l := 3
	n := 64
	bound := big.NewInt(1000)

	_, err := simple.NewRingLWE(l, n-1, bound)
	assert.Error(t, err, "ring degree must be a power of 2")

	ringLWE, err := simple.NewRingLWE(l, n, bound)
	if err != nil {
		t.Fatalf("error during scheme creation: %v", err)
	}

	sampler := sample.NewUniformRange(new(big.Int).Sub(big.NewInt(1), bound), bound)
	// the encrypted object is a matrix whose rows are ring elements
	X, err := data.NewRandomMatrix(l, n, sampler)
	if err != nil {
		t.Fatalf("error during random matrix generation: %v", err)
	}
	y, err := data.NewRandomVector(l, sampler)
	if err != nil {
		t.Fatalf("error during random vector generation: %v", err)
	}
	xyCheck, err := X.Transpose().MulVec(y)
	if err != nil {
		t.Fatalf("error during inner product calculation: %v", err)
	}

	SK, err := ringLWE.GenerateSecretKey()
	if err != nil {
		t.Fatalf("error during secret key generation: %v", err)
	}
	PK, err := ringLWE.GeneratePublicKey(SK)
	if err != nil {
		t.Fatalf("error during public key generation: %v", err)
	}

	skY, err := ringLWE.DeriveKey(y, SK)
	if err != nil {
		t.Fatalf("error during key derivation: %v", err)
	}

	CT, err := ringLWE.Encrypt(X, PK)
	if err != nil {
		t.Fatalf("error during encryption: %v", err)
	}

	xy, err := ringLWE.Decrypt(CT, skY, y)
	if err != nil {
		t.Fatalf("error during decryption: %v", err)
	}

	assert.Equal(t, xyCheck, xy, "obtained incorrect vector of inner products")
}
