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
	"github.com/arx-crypto/arxfe/sample"
	"github.com/stretchr/testify/assert"
)

// testVectorData returns random vectors x, y with coordinates within
// the given bounds together with their inner product.
func testVectorData(l int, boundX, boundY *big.Int) (data.Vector, data.Vector, *big.Int) {
	samplerX := sample.NewUniformRange(new(big.Int).Neg(boundX), boundX)
	samplerY := sample.NewUniformRange(new(big.Int).Neg(boundY), boundY)
	x, _ := data.NewRandomVector(l, samplerX)
	y, _ := data.NewRandomVector(l, samplerY)
	xy, _ := x.Dot(y)

	return x, y, xy
}

func TestFullySec_LWE(t *testing.T) {
	l := 4
	n := 64
	boundX := big.NewInt(4)
	boundY := big.NewInt(4)

	x, y, xyCheck := testVectorData(l, boundX, boundY)
	emptyVec := data.Vector{}
	emptyMat := data.Matrix{}

	fsLWE, err := fullysec.NewLWE(l, n, boundX, boundY)
	if err != nil {
		t.Fatalf("error during scheme creation: %v", err)
	}

	Z, err := fsLWE.GenerateSecretKey()
	if err != nil {
		t.Fatalf("error during secret key generation: %v", err)
	}

	_, err = fsLWE.GeneratePublicKey(emptyMat)
	assert.Error(t, err)
	U, err := fsLWE.GeneratePublicKey(Z)
	if err != nil {
		t.Fatalf("error during public key generation: %v", err)
	}

	_, err = fsLWE.DeriveKey(emptyVec, Z)
	assert.Error(t, err)
	_, err = fsLWE.DeriveKey(y, emptyMat)
	assert.Error(t, err)
	zY, err := fsLWE.DeriveKey(y, Z)
	if err != nil {
		t.Fatalf("error during key derivation: %v", err)
	}

	_, err = fsLWE.Encrypt(emptyVec, U)
	assert.Error(t, err)
	_, err = fsLWE.Encrypt(x, emptyMat)
	assert.Error(t, err)
	cipher, err := fsLWE.Encrypt(x, U)
	if err != nil {
		t.Fatalf("error during encryption: %v", err)
	}

	xy, err := fsLWE.Decrypt(cipher, zY, y)
	if err != nil {
		t.Fatalf("error during decryption: %v", err)
	}

	assert.Equal(t, xyCheck, xy, "obtained incorrect inner product")
}
