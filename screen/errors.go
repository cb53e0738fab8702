package screen

import "fmt"

type UnsupportedTableSizeError struct {
	TableSize TableSize
}

func (e UnsupportedTableSizeError) Error() string {
	return fmt.Sprintf("Unsupported table size: %d", int(e.TableSize))
}

type InvalidSeatError struct {
	TableSize TableSize
	SeatNo    uint32
}

func (e InvalidSeatError) Error() string {
	return fmt.Sprintf("Invalid seat %d for %s table", e.SeatNo, e.TableSize)
}

type RegionConfigError struct {
	Msg string
}

func (e RegionConfigError) Error() string {
	return e.Msg
}
