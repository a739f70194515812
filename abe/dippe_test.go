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
	"github.com/arx-crypto/arxfe/data"
	"github.com/fentec-project/bn256"
	"github.com/stretchr/testify/assert"
)

// dippeTestSetup builds a scheme with one authority per vector
// coordinate.
func dippeTestSetup(t *testing.T, secLevel, vecLen int) (*abe.DIPPE, []*abe.DIPPEAuth, []*abe.DIPPEPubKey) {
	d, err := abe.NewDIPPE(secLevel)
	if err != nil {
		t.Fatalf("error during scheme creation: %v", err)
	}

	auths := make([]*abe.DIPPEAuth, vecLen)
	pubKeys := make([]*abe.DIPPEPubKey, vecLen)
	for i := range auths {
		auths[i], err = d.NewDIPPEAuth(i)
		if err != nil {
			t.Fatalf("error during authority creation: %v", err)
		}
		pubKeys[i] = &auths[i].Pk
	}

	return d, auths, pubKeys
}

func dippeDecrypt(t *testing.T, d *abe.DIPPE, auths []*abe.DIPPEAuth, pubKeys []*abe.DIPPEPubKey,
	cipher *abe.DIPPECipher, v data.Vector, gid string) (*bn256.GT, error) {
	keys := make([]data.VectorG2, len(auths))
	var err error
	for i, auth := range auths {
		keys[i], err = auth.DeriveKeyShare(v, pubKeys, gid)
		if err != nil {
			t.Fatalf("error during key share derivation: %v", err)
		}
	}

	return d.Decrypt(cipher, keys, v, gid)
}

func TestDIPPE_Conjunction(t *testing.T) {
	secLevel := 2
	numAttrib := 5
	gid := "user1"

	d, auths, pubKeys := dippeTestSetup(t, secLevel, numAttrib+1)

	_, msg, err := bn256.RandomGT(rand.Reader)
	if err != nil {
		t.Fatalf("error during message generation: %v", err)
	}

	// required attributes 0, 1 and 4 out of 5
	x, err := d.ConjunctionPolicyVecInit([]int{0, 1, 4}, numAttrib)
	if err != nil {
		t.Fatalf("error during policy creation: %v", err)
	}

	cipher, err := d.Encrypt(msg, x, pubKeys)
	if err != nil {
		t.Fatalf("error during encryption: %v", err)
	}

	// a user owning a superset of the required attributes decrypts
	vGood, err := d.AttributeVecInit([]int{0, 1, 3, 4}, numAttrib)
	if err != nil {
		t.Fatalf("error during attribute vector creation: %v", err)
	}
	msgCheck, err := dippeDecrypt(t, d, auths, pubKeys, cipher, vGood, gid)
	if err != nil {
		t.Fatalf("error during decryption: %v", err)
	}
	assert.Equal(t, msg.String(), msgCheck.String(), "obtained incorrect message")

	// a user missing a required attribute does not
	vBad, err := d.AttributeVecInit([]int{0, 1}, numAttrib)
	if err != nil {
		t.Fatalf("error during attribute vector creation: %v", err)
	}
	_, err = dippeDecrypt(t, d, auths, pubKeys, cipher, vBad, gid)
	assert.Error(t, err, "decryption with missing attributes should fail")
}

func TestDIPPE_ExactThreshold(t *testing.T) {
	secLevel := 2
	numAttrib := 4
	threshold := 2
	gid := "user2"

	d, auths, pubKeys := dippeTestSetup(t, secLevel, numAttrib+1)

	_, msg, err := bn256.RandomGT(rand.Reader)
	if err != nil {
		t.Fatalf("error during message generation: %v", err)
	}

	x, err := d.ExactThresholdPolicyVecInit([]int{0, 1, 2, 3}, threshold, numAttrib)
	if err != nil {
		t.Fatalf("error during policy creation: %v", err)
	}

	cipher, err := d.Encrypt(msg, x, pubKeys)
	if err != nil {
		t.Fatalf("error during encryption: %v", err)
	}

	// exactly threshold attributes decrypt
	vGood, err := d.AttributeVecInit([]int{1, 3}, numAttrib)
	if err != nil {
		t.Fatalf("error during attribute vector creation: %v", err)
	}
	msgCheck, err := dippeDecrypt(t, d, auths, pubKeys, cipher, vGood, gid)
	if err != nil {
		t.Fatalf("error during decryption: %v", err)
	}
	assert.Equal(t, msg.String(), msgCheck.String(), "obtained incorrect message")

	// more than threshold attributes do not
	vBad, err := d.AttributeVecInit([]int{0, 1, 3}, numAttrib)
	if err != nil {
		t.Fatalf("error during attribute vector creation: %v", err)
	}
	_, err = dippeDecrypt(t, d, auths, pubKeys, cipher, vBad, gid)
	assert.Error(t, err, "decryption with too many attributes should fail")
}
