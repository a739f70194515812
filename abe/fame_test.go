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
	"math/big"
	"testing"

	"github.com/arx-crypto/arxfe/abe"
	"github.com/fentec-project/bn256"
	"github.com/stretchr/testify/assert"
)

func TestFAME(t *testing.T) {
	a := abe.NewFAME()

	pubKey, secKey, err := a.GenerateMasterKeys()
	if err != nil {
		t.Fatalf("error during master key generation: %v", err)
	}

	msp, err := abe.BooleanToMSP("(5 OR 3) AND ((2 OR 4) OR (1 AND 6))", false)
	if err != nil {
		t.Fatalf("error during MSP creation: %v", err)
	}

	_, msg, err := bn256.RandomGT(rand.Reader)
	if err != nil {
		t.Fatalf("error during message generation: %v", err)
	}

	cipher, err := a.Encrypt(msg, msp, pubKey)
	if err != nil {
		t.Fatalf("error during encryption: %v", err)
	}

	keys, err := a.GenerateAttribKeys([]int{1, 3, 6}, secKey)
	if err != nil {
		t.Fatalf("error during key generation: %v", err)
	}

	msgCheck, err := a.Decrypt(cipher, keys, pubKey)
	if err != nil {
		t.Fatalf("error during decryption: %v", err)
	}
	assert.Equal(t, msg.String(), msgCheck.String(), "obtained incorrect message")

	insufficientKeys, err := a.GenerateAttribKeys([]int{2}, secKey)
	if err != nil {
		t.Fatalf("error during key generation: %v", err)
	}
	_, err = a.Decrypt(cipher, insufficientKeys, pubKey)
	assert.Error(t, err, "decryption with insufficient keys should fail")
}

func TestFAME_UnitMessage(t *testing.T) {
	a := abe.NewFAME()

	pubKey, secKey, err := a.GenerateMasterKeys()
	if err != nil {
		t.Fatalf("error during master key generation: %v", err)
	}

	msp, err := abe.BooleanToMSP("(5 OR 3) AND ((2 OR 4) OR (1 AND 6))", false)
	if err != nil {
		t.Fatalf("error during MSP creation: %v", err)
	}

	// the identity of GT round-trips as well
	msg := new(bn256.GT).ScalarBaseMult(big.NewInt(0))

	cipher, err := a.Encrypt(msg, msp, pubKey)
	if err != nil {
		t.Fatalf("error during encryption: %v", err)
	}
	keys, err := a.GenerateAttribKeys([]int{1, 3, 6}, secKey)
	if err != nil {
		t.Fatalf("error during key generation: %v", err)
	}
	msgCheck, err := a.Decrypt(cipher, keys, pubKey)
	if err != nil {
		t.Fatalf("error during decryption: %v", err)
	}

	assert.Equal(t, msg.String(), msgCheck.String(), "obtained incorrect message")
}
