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

package fullysec_test

import (
	"math/big"
	"testing"

	"github.com/arx-crypto/arxfe/innerprod/fullysec"
	"github.com/stretchr/testify/assert"
)

func TestFullySec_FHIPE(t *testing.T) {
	l := 5
	boundX := big.NewInt(128)
	boundY := big.NewInt(128)

	fhipe, err := fullysec.NewFHIPE(l, boundX, boundY)
	if err != nil {
		t.Fatalf("error during scheme creation: %v", err)
	}

	masterKey, err := fhipe.GenerateMasterKey()
	if err != nil {
		t.Fatalf("error during master key generation: %v", err)
	}

	x, y, xyCheck := testVectorData(l, boundX, boundY)

	funcKey, err := fhipe.DeriveKey(y, masterKey)
	if err != nil {
		t.Fatalf("error during key derivation: %v", err)
	}

	ciphertext, err := fhipe.Encrypt(x, masterKey)
	if err != nil {
		t.Fatalf("error during encryption: %v", err)
	}

	xy, err := fhipe.Decrypt(ciphertext, funcKey)
	if err != nil {
		t.Fatalf("error during decryption: %v", err)
	}

	assert.Equal(t, xyCheck, xy, "obtained incorrect inner product")

	// dimension mismatches are rejected
	_, err = fhipe.DeriveKey(y[:l-1], masterKey)
	assert.Error(t, err)
	_, err = fhipe.Encrypt(x[:l-1], masterKey)
	assert.Error(t, err)
}
