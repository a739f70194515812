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
	"github.com/stretchr/testify/assert"
)

func TestSimple_LWE(t *testing.T) {
	l := 4
	n := 64
	bound := big.NewInt(1000)

	x, y, xyCheck := testVectorData(l, bound, bound)
	emptyVec := data.Vector{}
	emptyMat := data.Matrix{}

	simpleLWE, err := simple.NewLWE(l, bound, bound, n)
	if err != nil {
		t.Fatalf("error during scheme creation: %v", err)
	}

	SK, err := simpleLWE.GenerateSecretKey()
	if err != nil {
		t.Fatalf("error during secret key generation: %v", err)
	}

	_, err = simpleLWE.GeneratePublicKey(emptyMat)
	assert.Error(t, err)
	PK, err := simpleLWE.GeneratePublicKey(SK)
	if err != nil {
		t.Fatalf("error during public key generation: %v", err)
	}

	_, err = simpleLWE.DeriveKey(emptyVec, SK)
	assert.Error(t, err)
	_, err = simpleLWE.DeriveKey(y, emptyMat)
	assert.Error(t, err)
	skY, err := simpleLWE.DeriveKey(y, SK)
	if err != nil {
		t.Fatalf("error during key derivation: %v", err)
	}

	_, err = simpleLWE.Encrypt(emptyVec, PK)
	assert.Error(t, err)
	_, err = simpleLWE.Encrypt(x, emptyMat)
	assert.Error(t, err)
	cipher, err := simpleLWE.Encrypt(x, PK)
	if err != nil {
		t.Fatalf("error during encryption: %v", err)
	}

	_, err = simpleLWE.Decrypt(emptyVec, skY, y)
	assert.Error(t, err)
	_, err = simpleLWE.Decrypt(cipher, emptyVec, y)
	assert.Error(t, err)
	_, err = simpleLWE.Decrypt(cipher, skY, emptyVec)
	assert.Error(t, err)
	xy, err := simpleLWE.Decrypt(cipher, skY, y)
	if err != nil {
		t.Fatalf("error during decryption: %v", err)
	}

	assert.Equal(t, xyCheck, xy, "obtained incorrect inner product")
}
