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

import "math/big"

// ModExp computes g^x mod m for a possibly negative exponent x, in
// which case the modular inverse of g^|x| is returned.
func ModExp(g, x, m *big.Int) *big.Int {
	res := new(big.Int)
	if x.Sign() < 0 {
		res.Exp(g, new(big.Int).Neg(x), m)
		res.ModInverse(res, m)
	} else {
		res.Exp(g, x, m)
	}

	return res
}
