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

func TestFullySec_DamgardDecMulti(t *testing.T) {
	numClients := 3
	l := 2
	bound := big.NewInt(1000)
	modulusLength := 512

	damgardMulti, err := fullysec.NewDamgardMulti(numClients, l, modulusLength, bound)
	if err != nil {
		t.Fatalf("error during scheme creation: %v", err)
	}

	// clients set up their shares from the published keys
	clients := make([]*fullysec.DamgardDecMultiClient, numClients)
	pubKeys := make([]*big.Int, numClients)
	for i := 0; i < numClients; i++ {
		clients[i], err = fullysec.NewDamgardDecMultiClient(i, damgardMulti)
		if err != nil {
			t.Fatalf("error during client creation: %v", err)
		}
		pubKeys[i] = clients[i].ClientPubKey
	}
	for i := 0; i < numClients; i++ {
		if err := clients[i].SetShare(pubKeys); err != nil {
			t.Fatalf("error during share generation: %v", err)
		}
	}

	secKeys := make([]*fullysec.DamgardDecMultiSecKey, numClients)
	for i := 0; i < numClients; i++ {
		secKeys[i], err = clients[i].GenerateKeys()
		if err != nil {
			t.Fatalf("error during key generation: %v", err)
		}
	}

	sampler := sample.NewUniformRange(new(big.Int).Neg(bound), bound)
	x, err := data.NewRandomMatrix(numClients, l, sampler)
	if err != nil {
		t.Fatalf("error during random matrix generation: %v", err)
	}
	y, err := data.NewRandomMatrix(numClients, l, sampler)
	if err != nil {
		t.Fatalf("error during random matrix generation: %v", err)
	}
	xyCheck, err := x.Dot(y)
	if err != nil {
		t.Fatalf("error during inner product calculation: %v", err)
	}

	ciphers := make([]data.Vector, numClients)
	partKeys := make([]*fullysec.DamgardDecMultiDerivedKeyPart, numClients)
	for i := 0; i < numClients; i++ {
		ciphers[i], err = clients[i].Encrypt(x[i], secKeys[i])
		if err != nil {
			t.Fatalf("error during encryption: %v", err)
		}
		partKeys[i], err = clients[i].DeriveKeyShare(secKeys[i], y)
		if err != nil {
			t.Fatalf("error during key share derivation: %v", err)
		}
	}

	decryptor := fullysec.NewDamgardDecMultiDec(damgardMulti)
	xy, err := decryptor.Decrypt(ciphers, partKeys, y)
	if err != nil {
		t.Fatalf("error during decryption: %v", err)
	}

	assert.Equal(t, xyCheck, xy, "obtained incorrect sum of inner products")
}
