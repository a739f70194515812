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

func TestFullySec_PaillierMulti(t *testing.T) {
	numClients := 3
	l := 3
	lambda := 128
	bitLen := 256
	boundX := big.NewInt(1000)
	boundY := big.NewInt(1000)

	paillierMulti, err := fullysec.NewPaillierMulti(numClients, l, lambda, bitLen, boundX, boundY)
	if err != nil {
		t.Fatalf("error during scheme creation: %v", err)
	}

	secKeys, err := paillierMulti.GenerateMasterKeys()
	if err != nil {
		t.Fatalf("error during master key generation: %v", err)
	}

	samplerX := sample.NewUniformRange(new(big.Int).Neg(boundX), boundX)
	samplerY := sample.NewUniformRange(new(big.Int).Neg(boundY), boundY)
	x, err := data.NewRandomMatrix(numClients, l, samplerX)
	if err != nil {
		t.Fatalf("error during random matrix generation: %v", err)
	}
	y, err := data.NewRandomMatrix(numClients, l, samplerY)
	if err != nil {
		t.Fatalf("error during random matrix generation: %v", err)
	}
	xyCheck, err := x.Dot(y)
	if err != nil {
		t.Fatalf("error during inner product calculation: %v", err)
	}

	ciphers := make([]data.Vector, numClients)
	for i := 0; i < numClients; i++ {
		client := fullysec.NewPaillierMultiClientFromParams(paillierMulti.Params, boundX, boundY)
		ciphers[i], err = client.Encrypt(x[i], secKeys.Mpk[i], secKeys.Otp[i])
		if err != nil {
			t.Fatalf("error during encryption: %v", err)
		}
	}

	funcKey, err := paillierMulti.DeriveKey(secKeys, y)
	if err != nil {
		t.Fatalf("error during key derivation: %v", err)
	}

	xy, err := paillierMulti.Decrypt(ciphers, funcKey, y)
	if err != nil {
		t.Fatalf("error during decryption: %v", err)
	}

	assert.Equal(t, xyCheck, xy, "obtained incorrect sum of inner products")
}
