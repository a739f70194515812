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

	"github.com/arx-crypto/arxfe/data"
	"github.com/arx-crypto/arxfe/innerprod/fullysec"
	"github.com/stretchr/testify/assert"
)

func TestFullySec_Paillier(t *testing.T) {
	l := 50
	lambda := 128
	bitLen := 512
	boundX := big.NewInt(1024)
	boundY := big.NewInt(1024)

	paillier, err := fullysec.NewPaillier(l, lambda, bitLen, boundX, boundY)
	if err != nil {
		t.Fatalf("error during scheme creation: %v", err)
	}

	masterSecKey, masterPubKey, err := paillier.GenerateMasterKeys()
	if err != nil {
		t.Fatalf("error during master key generation: %v", err)
	}

	x, y, xyCheck := testVectorData(l, boundX, boundY)

	funcKey, err := paillier.DeriveKey(masterSecKey, y)
	if err != nil {
		t.Fatalf("error during key derivation: %v", err)
	}

	encryptor := fullysec.NewPaillierFromParams(paillier.Params)
	ciphertext, err := encryptor.Encrypt(x, masterPubKey)
	if err != nil {
		t.Fatalf("error during encryption: %v", err)
	}

	xy, err := paillier.Decrypt(ciphertext, funcKey, y)
	if err != nil {
		t.Fatalf("error during decryption: %v", err)
	}

	assert.Equal(t, xyCheck, xy, "obtained incorrect inner product")

	atBound := data.NewConstantVector(l, boundX)
	_, err = paillier.Encrypt(atBound, masterPubKey)
	assert.Error(t, err, "encryption at the bound should be rejected")
}
