// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

// SetScanLimit overrides the listing scan cap.
func (service *Service) SetScanLimit(limit int) {
	service.scanLimit = limit
}
