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

package internal

import "errors"

// Sentinel errors reported by schemes when an artifact passed to them
// does not have the expected shape.
var (
	ErrMalformedPubKey = errors.New("public key is not of the proper form")
	ErrMalformedSecKey = errors.New("secret key is not of the proper form")
	ErrMalformedDecKey = errors.New("decryption key is not of the proper form")
	ErrMalformedCipher = errors.New("ciphertext is not of the proper form")
	ErrMalformedInput  = errors.New("input data is not of the proper form")
)
