// registers.go - $DFF0xx custom chip register address map and DMACON bits

package core

// Custom chip register offsets from $DFF000, the subset this core reads or
// writes directly. Addresses the core never touches (sprite position/data,
// color palette beyond what the pipeline needs to tag) are intentionally
// absent; a host adds them on its own ChipMemory-facing register file.
const (
	RegDMACONR RegID = 0x002
	RegVPOSR   RegID = 0x004
	RegVHPOSR  RegID = 0x006
	RegDSKPTH  RegID = 0x020
	RegDSKPTL  RegID = 0x022
	RegVPOSW   RegID = 0x02A
	RegVHPOSW  RegID = 0x02C
	RegCOPCON  RegID = 0x02E
	RegCOP1LCH RegID = 0x080
	RegCOP1LCL RegID = 0x082
	RegCOP2LCH RegID = 0x084
	RegCOP2LCL RegID = 0x086
	RegCOPJMP1 RegID = 0x088
	RegCOPJMP2 RegID = 0x08A
	RegDIWSTRT RegID = 0x08E
	RegDIWSTOP RegID = 0x090
	RegDDFSTRT RegID = 0x092
	RegDDFSTOP RegID = 0x094
	RegDMACON  RegID = 0x096
	RegINTENA  RegID = 0x09A
	RegINTREQ  RegID = 0x09C
	RegBPLCON0 RegID = 0x100
	RegBPLCON1 RegID = 0x102
	RegBPLCON2 RegID = 0x104
	RegBLTCON0 RegID = 0x040
	RegBLTCON1 RegID = 0x042
	RegBLTAFWM RegID = 0x044
	RegBLTALWM RegID = 0x046
	RegBLTCPTH RegID = 0x048
	RegBLTCPTL RegID = 0x04A
	RegBLTBPTH RegID = 0x04C
	RegBLTBPTL RegID = 0x04E
	RegBLTAPTH RegID = 0x050
	RegBLTAPTL RegID = 0x052
	RegBLTDPTH RegID = 0x054
	RegBLTDPTL RegID = 0x056
	RegBLTSIZE RegID = 0x058
	RegBLTCMOD RegID = 0x060
	RegBLTBMOD RegID = 0x062
	RegBLTAMOD RegID = 0x064
	RegBLTDMOD RegID = 0x066
	RegBLTCDAT RegID = 0x070
	RegBLTBDAT RegID = 0x072
	RegBLTADAT RegID = 0x074
)

// DMACON enable bits, bits [10:0] of the register; bit 15 selects
// set-vs-clear on write and is handled at the poke site, not stored.
const (
	DMACONBitAUD0EN uint16 = 1 << 0
	DMACONBitAUD1EN uint16 = 1 << 1
	DMACONBitAUD2EN uint16 = 1 << 2
	DMACONBitAUD3EN uint16 = 1 << 3
	DMACONBitDSKEN  uint16 = 1 << 4
	DMACONBitSPREN  uint16 = 1 << 5
	DMACONBitBLTEN  uint16 = 1 << 6
	DMACONBitCOPEN  uint16 = 1 << 7
	DMACONBitBPLEN  uint16 = 1 << 8
	DMACONBitDMAEN  uint16 = 1 << 9
	DMACONBitBLTPRI uint16 = 1 << 10

	DMACONBitBZERO uint16 = 1 << 13
	DMACONBitBBUSY uint16 = 1 << 14

	dmaconSetClear uint16 = 0x8000
	dmaconWriteMask uint16 = 0x07FF
)
