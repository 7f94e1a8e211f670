package delegation

import (
	"encoding/binary"
	"encoding/csv"
	"io"
	"net/netip"
	"strconv"

	"github.com/pkg/errors"
	"inet.af/netaddr"
)

// registryFieldCount is the number of pipe-delimited fields a real
// allocation/assignment line carries: registry|cc|type|start|value|date|status.
// The version line (version|registry|serial|...) and summary lines
// (registry|*|type|*|count|summary) both carry fewer fields, so the
// len(row) < registryFieldCount check below is what filters them out.
const registryFieldCount = 7

// ParseReport reads one RIR extended-delegation report and returns every
// allocated or assigned ipv4/ipv6 record it contains. registry is used only
// to annotate errors. Comment lines (leading '#') are skipped by the csv
// reader's Comment setting; FieldsPerRecord=-1 tolerates the short
// version/summary rows, which are then filtered out by field count.
func ParseReport(r io.Reader, registry string) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.Comma = '|'
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s delegation report", registry)
	}

	var records []Record
	for lineNum, row := range rows {
		if len(row) < registryFieldCount {
			// version line, or a summary line that omits the date field.
			continue
		}

		typ := field(row, 2)
		status := field(row, 6)
		if typ != "ipv4" && typ != "ipv6" {
			continue
		}
		if status != "allocated" && status != "assigned" {
			continue
		}

		country := field(row, 1)
		start := field(row, 3)
		value := field(row, 4)

		prefixes, err := toPrefixes(typ, start, value)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s delegation report, line %d", registry, lineNum+1)
		}

		for _, p := range prefixes {
			records = append(records, Record{Country: country, Prefix: p})
		}
	}

	return records, nil
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// toPrefixes converts one RIR record's (start, value) pair into one or more
// CIDR prefixes. For ipv6, value is already a prefix length. For ipv4,
// value is a host count; the [start, start+count) range is split into the
// minimal set of covering CIDR blocks with inet.af/netaddr's
// IPRange.Prefixes(), since a host count rarely falls on a power-of-two
// boundary by itself.
func toPrefixes(typ, start, value string) ([]netip.Prefix, error) {
	switch typ {
	case "ipv6":
		length, err := strconv.Atoi(value)
		if err != nil {
			return nil, errors.Wrapf(err, "parse ipv6 prefix length %q", value)
		}
		p, err := netip.ParsePrefix(start + "/" + strconv.Itoa(length))
		if err != nil {
			return nil, errors.Wrapf(err, "parse ipv6 prefix %s/%d", start, length)
		}
		return []netip.Prefix{p}, nil
	case "ipv4":
		count, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "parse ipv4 host count %q", value)
		}
		return ipv4RangeToPrefixes(start, count)
	default:
		return nil, errors.Errorf("unknown delegation type %q", typ)
	}
}

func ipv4RangeToPrefixes(start string, count uint64) ([]netip.Prefix, error) {
	startAddr, err := netaddr.ParseIP(start)
	if err != nil {
		return nil, errors.Wrapf(err, "parse ipv4 start address %q", start)
	}
	if !startAddr.Is4() {
		return nil, errors.Errorf("ipv4 record start address %q is not IPv4", start)
	}
	if count == 0 {
		return nil, nil
	}

	startBytes := startAddr.As4()
	startU32 := binary.BigEndian.Uint32(startBytes[:])
	endU32 := startU32 + uint32(count) - 1

	var endBytes [4]byte
	binary.BigEndian.PutUint32(endBytes[:], endU32)
	endAddr := netaddr.IPv4(endBytes[0], endBytes[1], endBytes[2], endBytes[3])

	rng := netaddr.IPRangeFrom(startAddr, endAddr)
	if !rng.Valid() {
		return nil, errors.Errorf("ipv4 record %q + %d hosts is not a valid range", start, count)
	}

	netaddrPrefixes := rng.Prefixes()
	prefixes := make([]netip.Prefix, 0, len(netaddrPrefixes))
	for _, np := range netaddrPrefixes {
		p, err := netip.ParsePrefix(np.String())
		if err != nil {
			return nil, errors.Wrapf(err, "re-parse netaddr prefix %s", np.String())
		}
		prefixes = append(prefixes, p)
	}

	return prefixes, nil
}
