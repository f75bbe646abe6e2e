package evm

// couponABI is the application call surface of the deployed coupon contract.
// Only the methods this service consumes are declared.
const couponABI = `[
  {"type":"function","name":"getMyOrganizations","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256[]"}]},
  {"type":"function","name":"getMyCoupons","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256[]"}]},
  {"type":"function","name":"getOrganizationCoupons","stateMutability":"view","inputs":[{"name":"organizationId","type":"uint256"}],"outputs":[{"name":"","type":"uint256[]"}]},
  {"type":"function","name":"getOrganization","stateMutability":"view","inputs":[{"name":"organizationId","type":"uint256"}],"outputs":[
    {"name":"id","type":"uint256"},
    {"name":"name","type":"string"},
    {"name":"description","type":"string"},
    {"name":"admin","type":"address"},
    {"name":"isActive","type":"bool"},
    {"name":"createdAt","type":"uint256"}
  ]},
  {"type":"function","name":"getCoupon","stateMutability":"view","inputs":[{"name":"couponId","type":"uint256"}],"outputs":[
    {"name":"id","type":"uint256"},
    {"name":"organizationId","type":"uint256"},
    {"name":"code","type":"string"},
    {"name":"discountAmount","type":"uint256"},
    {"name":"isUsed","type":"bool"},
    {"name":"isActive","type":"bool"},
    {"name":"ownerWallet","type":"address"},
    {"name":"ownerEmail","type":"string"},
    {"name":"createdAt","type":"uint256"}
  ]},
  {"type":"function","name":"getCouponIdByCode","stateMutability":"view","inputs":[{"name":"code","type":"string"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"createOrganization","stateMutability":"nonpayable","inputs":[{"name":"name","type":"string"},{"name":"description","type":"string"}],"outputs":[]},
  {"type":"function","name":"createCoupon","stateMutability":"nonpayable","inputs":[{"name":"organizationId","type":"uint256"},{"name":"code","type":"string"},{"name":"discountAmount","type":"uint256"},{"name":"recipientEmail","type":"string"}],"outputs":[]},
  {"type":"function","name":"useCoupon","stateMutability":"nonpayable","inputs":[{"name":"couponId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"shareCoupon","stateMutability":"nonpayable","inputs":[{"name":"couponId","type":"uint256"},{"name":"recipientEmail","type":"string"}],"outputs":[]},
  {"type":"function","name":"linkCouponToWallet","stateMutability":"nonpayable","inputs":[{"name":"code","type":"string"}],"outputs":[]}
]`
