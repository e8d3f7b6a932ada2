// Command bgpcodec-dump decodes a captured BMP stream and prints one
// line per message. It reads a single collector-framed payload (the
// OpenBMP v1.7 or v2 envelope the capture package understands) from a
// file argument, or raw BMP bytes with -raw, and walks every BMP
// message the payload contains, printing RouteMonitoring's encapsulated
// UPDATE summary the way the teacher's debug tooling does.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/route-beacon/bgpcodec/bgp"
	"github.com/route-beacon/bgpcodec/bgpconfig"
	"github.com/route-beacon/bgpcodec/bmp"
	"github.com/route-beacon/bgpcodec/capture"
)

func main() {
	raw := flag.Bool("raw", false, "input is already unwrapped BMP bytes, skip collector-frame decoding")
	maxPayload := flag.Int("max-payload", 16*1024*1024, "reject a declared collector payload larger than this many bytes")
	profilePath := flag.String("profile", "", "optional bgpconfig profile used only to validate parsing; has no effect on decoding")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: bgpcodec-dump [-raw] [-max-payload N] [-profile path] <file>")
		os.Exit(2)
	}

	if *profilePath != "" {
		if _, err := bgpconfig.Load(*profilePath); err != nil {
			fmt.Fprintf(os.Stderr, "profile: %v\n", err)
			os.Exit(1)
		}
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "read: %v\n", err)
		os.Exit(1)
	}

	payload := data
	if !*raw {
		frame, err := capture.DecodeCollectorFrame(data, *maxPayload)
		if err != nil {
			fmt.Fprintf(os.Stderr, "collector frame: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("collector frame: format=%s version=%#x header_len=%d\n", frame.Format, frame.Version, frame.HeaderLength)
		payload = frame.Payload
	}

	cache := bmp.NewCache()
	offset := 0
	count := 0
	for offset < len(payload) {
		msg, n, err := bmp.DecodeMessage(payload[offset:], cache)
		if err != nil {
			fmt.Fprintf(os.Stderr, "msg %d at offset %d: %v\n", count, offset, err)
			os.Exit(1)
		}
		printMessage(count, offset, msg)
		offset += n
		count++
	}

	fmt.Printf("%d BMP messages decoded\n", count)
}

func printMessage(i, offset int, msg *bmp.Message) {
	fmt.Printf("--- msg %d (offset=%d, type=%s) ---\n", i, offset, msg.Header.Type)
	if msg.PeerHeader != nil {
		fmt.Printf("  peer: type=%d asn=%d address=%s routerID=%s\n",
			msg.PeerHeader.PeerType, msg.PeerHeader.ASN, msg.PeerHeader.PeerAddress(), msg.PeerHeader.RouterID)
	}

	switch {
	case msg.PeerUp != nil:
		fmt.Printf("  peer up: local=%s:%d remote_port=%d info_tlvs=%d\n",
			msg.PeerUp.LocalAddress, msg.PeerUp.LocalPort, msg.PeerUp.RemotePort, len(msg.PeerUp.InfoTLVs))

	case msg.PeerDown != nil:
		fmt.Printf("  peer down: reason=%d data_len=%d\n", msg.PeerDown.Reason, len(msg.PeerDown.Data))

	case msg.RouteMonitoring != nil:
		rm := msg.RouteMonitoring
		printUpdate(rm.Update, rm.DefaultedContext)

	case msg.Initiation != nil:
		fmt.Printf("  initiation: %d info tlvs\n", len(msg.Initiation.TLVs))

	case msg.Termination != nil:
		fmt.Printf("  termination: %d info tlvs\n", len(msg.Termination.TLVs))

	case msg.StatisticsData != nil:
		fmt.Printf("  statistics report: %d bytes undecoded\n", len(msg.StatisticsData))

	case msg.Mirroring != nil:
		fmt.Printf("  route mirroring: %d bytes undecoded\n", len(msg.Mirroring))
	}
}

func printUpdate(u *bgp.UpdateMessage, defaulted bool) {
	fmt.Printf("  update: withdrawn=%d nlri=%d attrs=%d defaulted_context=%v\n",
		len(u.WithdrawnRoutes), len(u.NLRI), len(u.Attributes), defaulted)
}
