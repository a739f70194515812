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

package abe_test

import (
	"crypto/rand"
	"testing"

	"github.com/arx-crypto/arxfe/abe"
	"github.com/fentec-project/bn256"
	"github.com/stretchr/testify/assert"
)

func TestGPSW(t *testing.T) {
	a := abe.NewGPSW(10)

	pubKey, secKey, err := a.GenerateMasterKeys()
	if err != nil {
		t.Fatalf("error during master key generation: %v", err)
	}

	_, msg, err := bn256.RandomGT(rand.Reader)
	if err != nil {
		t.Fatalf("error during message generation: %v", err)
	}

	gamma := []int{1, 2, 3, 4, 5, 6, 7}
	cipher, err := a.Encrypt(msg, gamma, pubKey)
	if err != nil {
		t.Fatalf("error during encryption: %v", err)
	}

	msp, err := abe.BooleanToMSP("(5 OR 3) AND ((2 OR 4) OR (1 AND 6))", true)
	if err != nil {
		t.Fatalf("error during MSP creation: %v", err)
	}

	policyKey, err := a.GeneratePolicyKey(msp, secKey)
	if err != nil {
		t.Fatalf("error during key generation: %v", err)
	}

	// a key delegated to a satisfying attribute set decrypts
	ownedKey := a.DelegateKeys(policyKey, []int{1, 3, 6})
	msgCheck, err := a.Decrypt(cipher, ownedKey)
	if err != nil {
		t.Fatalf("error during decryption: %v", err)
	}
	assert.Equal(t, msg.String(), msgCheck.String(), "obtained incorrect message")

	// a key delegated to an insufficient set does not
	insufficientKey := a.DelegateKeys(policyKey, []int{2})
	_, err = a.Decrypt(cipher, insufficientKey)
	assert.Error(t, err, "decryption with an insufficient key should fail")
}

func TestGPSW_AttributesOutOfUniverse(t *testing.T) {
	a := abe.NewGPSW(5)

	pubKey, secKey, err := a.GenerateMasterKeys()
	if err != nil {
		t.Fatalf("error during master key generation: %v", err)
	}

	_, msg, err := bn256.RandomGT(rand.Reader)
	if err != nil {
		t.Fatalf("error during message generation: %v", err)
	}

	_, err = a.Encrypt(msg, []int{1, 7}, pubKey)
	assert.Error(t, err, "attributes out of the universe should be rejected")

	msp, err := abe.BooleanToMSP("1 AND 7", true)
	if err != nil {
		t.Fatalf("error during MSP creation: %v", err)
	}
	_, err = a.GeneratePolicyKey(msp, secKey)
	assert.Error(t, err, "policies over attributes out of the universe should be rejected")
}
