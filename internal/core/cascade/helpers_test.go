// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cascade_test

import "strconv"

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
