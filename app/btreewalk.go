package main

// WalkTableBTree visits every leaf cell of the table B-tree rooted at
// rootPage, in ascending rowid order, depth-first. Interior pages are
// descended left-to-right, which a well-formed table B-tree guarantees is
// also key order: the file format insists each interior cell's key is the
// largest rowid reachable through its left child, and the page's own
// right-most pointer holds every rowid greater than all of them.
func WalkTableBTree(pager *Pager, rootPage uint32, visit func(cell *TableLeafCell) error) error {
	return walkTableBTreePage(pager, rootPage, visit)
}

func walkTableBTreePage(pager *Pager, pageNum uint32, visit func(cell *TableLeafCell) error) error {
	raw, err := pager.ReadPage(pageNum)
	if err != nil {
		return err
	}
	body := pager.PageBodyBytes(pageNum, raw)
	page, err := ParseBTreePage(body, reservedSpaceOf(pager))
	if err != nil {
		return err
	}
	if !page.IsTable() {
		return NewDatabaseError("walk_table_btree", ErrInvalidPageType, map[string]interface{}{
			"page": pageNum,
			"type": page.Type,
		})
	}

	if page.IsLeaf() {
		for i := 0; i < int(page.CellCount); i++ {
			cell, err := page.ReadTableLeafCell(i)
			if err != nil {
				return err
			}
			if err := visit(cell); err != nil {
				return err
			}
		}
		return nil
	}

	for i := 0; i < int(page.CellCount); i++ {
		cell, err := page.ReadTableInteriorCell(i)
		if err != nil {
			return err
		}
		if err := walkTableBTreePage(pager, cell.LeftChildPage, visit); err != nil {
			return err
		}
	}
	return walkTableBTreePage(pager, page.RightMostPage, visit)
}

// CountTableRows counts rows by summing leaf cell counts, descending
// interior pages but never decoding a leaf payload (spec's COUNT(*)
// fast path, §4.8).
func CountTableRows(pager *Pager, rootPage uint32) (int64, error) {
	raw, err := pager.ReadPage(rootPage)
	if err != nil {
		return 0, err
	}
	body := pager.PageBodyBytes(rootPage, raw)
	page, err := ParseBTreePage(body, reservedSpaceOf(pager))
	if err != nil {
		return 0, err
	}
	if !page.IsTable() {
		return 0, NewDatabaseError("count_table_rows", ErrInvalidPageType, map[string]interface{}{
			"page": rootPage,
		})
	}

	if page.IsLeaf() {
		return int64(page.CellCount), nil
	}

	var total int64
	for i := 0; i < int(page.CellCount); i++ {
		cell, err := page.ReadTableInteriorCell(i)
		if err != nil {
			return 0, err
		}
		n, err := CountTableRows(pager, cell.LeftChildPage)
		if err != nil {
			return 0, err
		}
		total += n
	}
	n, err := CountTableRows(pager, page.RightMostPage)
	if err != nil {
		return 0, err
	}
	return total + n, nil
}

// reservedSpaceOf exposes the pager's reserved-space byte count to the
// btree walker, which needs it to compute each page's usable size.
func reservedSpaceOf(pager *Pager) uint8 {
	return pager.reservedSpace
}
