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

package quadratic_test

import (
	"math/big"
	"testing"

	"github.com/arx-crypto/arxfe/data"
	"github.com/arx-crypto/arxfe/quadratic"
	"github.com/arx-crypto/arxfe/sample"
	"github.com/stretchr/testify/assert"
)

func TestSGP(t *testing.T) {
	n := 3
	bound := big.NewInt(10)

	sgp := quadratic.NewSGP(n, bound)

	msk, err := sgp.GenerateMasterKey()
	if err != nil {
		t.Fatalf("error during master key generation: %v", err)
	}

	sampler := sample.NewUniformRange(new(big.Int).Sub(big.NewInt(1), bound), bound)
	x, err := data.NewRandomVector(n, sampler)
	if err != nil {
		t.Fatalf("error during random vector generation: %v", err)
	}
	y, err := data.NewRandomVector(n, sampler)
	if err != nil {
		t.Fatalf("error during random vector generation: %v", err)
	}
	F, err := data.NewRandomMatrix(n, n, sampler)
	if err != nil {
		t.Fatalf("error during random matrix generation: %v", err)
	}
	check, err := F.MulXMatY(x, y)
	if err != nil {
		t.Fatalf("error during function calculation: %v", err)
	}

	cipher, err := sgp.Encrypt(x, y, msk)
	if err != nil {
		t.Fatalf("error during encryption: %v", err)
	}

	key, err := sgp.DeriveKey(msk, F)
	if err != nil {
		t.Fatalf("error during key derivation: %v", err)
	}

	dec, err := sgp.Decrypt(cipher, key, F)
	if err != nil {
		t.Fatalf("error during decryption: %v", err)
	}

	assert.Equal(t, check, dec, "obtained incorrect value of the quadratic function")

	atBound := data.NewConstantVector(n, bound)
	_, err = sgp.Encrypt(atBound, y, msk)
	assert.Error(t, err, "encryption at the bound should be rejected")
}
