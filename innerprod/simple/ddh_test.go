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

// testVectorData returns random vectors x, y with coordinates within
// the given bounds together with their inner product.
func testVectorData(l int, boundX, boundY *big.Int) (data.Vector, data.Vector, *big.Int) {
	samplerX := sample.NewUniformRange(new(big.Int).Sub(big.NewInt(1), boundX), boundX)
	samplerY := sample.NewUniformRange(new(big.Int).Sub(big.NewInt(1), boundY), boundY)
	x, _ := data.NewRandomVector(l, samplerX)
	y, _ := data.NewRandomVector(l, samplerY)
	xy, _ := x.Dot(y)

	return x, y, xy
}

func TestSimple_DDH(t *testing.T) {
	l := 5
	bound := big.NewInt(1000)
	modulusLength := 512

	simpleDDH, err := simple.NewDDH(l, modulusLength, bound)
	if err != nil {
		t.Fatalf("error during scheme creation: %v", err)
	}

	masterSecKey, masterPubKey, err := simpleDDH.GenerateMasterKeys()
	if err != nil {
		t.Fatalf("error during master key generation: %v", err)
	}

	x := data.Vector{big.NewInt(10), big.NewInt(-20), big.NewInt(30),
		big.NewInt(-40), big.NewInt(50)}
	y := data.NewConstantVector(l, big.NewInt(1))

	funcKey, err := simpleDDH.DeriveKey(masterSecKey, y)
	if err != nil {
		t.Fatalf("error during key derivation: %v", err)
	}

	encryptor := simple.NewDDHFromParams(simpleDDH.Params)
	ciphertext, err := encryptor.Encrypt(x, masterPubKey)
	if err != nil {
		t.Fatalf("error during encryption: %v", err)
	}

	decryptor := simple.NewDDHFromParams(simpleDDH.Params)
	xy, err := decryptor.Decrypt(ciphertext, funcKey, y)
	if err != nil {
		t.Fatalf("error during decryption: %v", err)
	}

	assert.Equal(t, big.NewInt(30), xy, "the sum of coordinates of x should be decrypted")
}

func TestSimple_DDH_Random(t *testing.T) {
	l := 3
	bound := new(big.Int).Lsh(big.NewInt(1), 10)

	simpleDDH, err := simple.NewDDH(l, 512, bound)
	if err != nil {
		t.Fatalf("error during scheme creation: %v", err)
	}

	masterSecKey, masterPubKey, err := simpleDDH.GenerateMasterKeys()
	if err != nil {
		t.Fatalf("error during master key generation: %v", err)
	}

	x, y, xyCheck := testVectorData(l, bound, bound)

	funcKey, err := simpleDDH.DeriveKey(masterSecKey, y)
	if err != nil {
		t.Fatalf("error during key derivation: %v", err)
	}

	ciphertext, err := simpleDDH.Encrypt(x, masterPubKey)
	if err != nil {
		t.Fatalf("error during encryption: %v", err)
	}

	xy, err := simpleDDH.Decrypt(ciphertext, funcKey, y)
	if err != nil {
		t.Fatalf("error during decryption: %v", err)
	}

	assert.Equal(t, xyCheck, xy, "obtained incorrect inner product")
}

func TestSimple_DDH_BoundViolations(t *testing.T) {
	l := 3
	bound := big.NewInt(100)

	simpleDDH, err := simple.NewDDH(l, 512, bound)
	if err != nil {
		t.Fatalf("error during scheme creation: %v", err)
	}

	masterSecKey, masterPubKey, err := simpleDDH.GenerateMasterKeys()
	if err != nil {
		t.Fatalf("error during master key generation: %v", err)
	}

	atBound := data.NewConstantVector(l, bound)
	_, err = simpleDDH.DeriveKey(masterSecKey, atBound)
	assert.Error(t, err, "derivation at the bound should be rejected")
	_, err = simpleDDH.Encrypt(atBound, masterPubKey)
	assert.Error(t, err, "encryption at the bound should be rejected")

	belowBound := data.NewConstantVector(l, new(big.Int).Sub(bound, big.NewInt(1)))
	_, err = simpleDDH.DeriveKey(masterSecKey, belowBound)
	assert.NoError(t, err, "derivation below the bound should be accepted")
	_, err = simpleDDH.Encrypt(belowBound, masterPubKey)
	assert.NoError(t, err, "encryption below the bound should be accepted")
}
